package core

import "hallcore/pkg/domain"

// SeedSnapshot returns the demo tree installed when no prior snapshot
// exists: blocks A and B, a ground floor with rooms 101-140 (101 and 102
// partially occupied), and an empty first floor with rooms 201-240.
func SeedSnapshot() domain.Snapshot {
	students := []domain.Student{
		{
			ID: "S001", Name: "Ahmed Rahman", Department: "Computer Science",
			Batch: "2022", District: "Dhaka", EntryDate: "2022-09-01",
			DOB: "2001-05-15", BloodGroup: "A+", Phone: "01712345678",
			Email:    "ahmed.rahman@student.edu",
			PhotoURL: "https://api.dicebear.com/7.x/avataaars/svg?seed=Ahmed",
			Status:   domain.StatusRegular,
		},
		{
			ID: "S002", Name: "Karim Hossain", Department: "Electrical Engineering",
			Batch: "2022", District: "Chittagong", EntryDate: "2022-09-01",
			DOB: "2001-08-22", BloodGroup: "B+", Phone: "01812456789",
			Email:    "karim.hossain@student.edu",
			PhotoURL: "https://api.dicebear.com/7.x/avataaars/svg?seed=Karim",
			Status:   domain.StatusRegular,
		},
		{
			ID: "S003", Name: "Rafiq Islam", Department: "Mechanical Engineering",
			Batch: "2021", District: "Sylhet", EntryDate: "2021-09-01",
			DOB: "2000-12-10", BloodGroup: "O+", Phone: "01912567890",
			Email:    "rafiq.islam@student.edu",
			PhotoURL: "https://api.dicebear.com/7.x/avataaars/svg?seed=Rafiq",
			Status:   domain.StatusIrregular,
		},
		{
			ID: "S004", Name: "Tariq Ahmed", Department: "Civil Engineering",
			Batch: "2023", District: "Rajshahi", EntryDate: "2023-09-01",
			DOB: "2002-03-25", BloodGroup: "AB+", Phone: "01612678901",
			Email:    "tariq.ahmed@student.edu",
			PhotoURL: "https://api.dicebear.com/7.x/avataaars/svg?seed=Tariq",
			Status:   domain.StatusRegular,
		},
	}

	groundRooms := []domain.Room{
		{ID: 101, Students: students[0:3:3]},
		{ID: 102, Students: students[3:4:4]},
	}
	for id := 103; id <= 140; id++ {
		groundRooms = append(groundRooms, domain.Room{ID: id, Students: []domain.Student{}})
	}
	firstRooms := make([]domain.Room, 0, 40)
	for id := 201; id <= 240; id++ {
		firstRooms = append(firstRooms, domain.Room{ID: id, Students: []domain.Student{}})
	}

	return domain.Snapshot{
		Blocks: []domain.Block{
			{ID: "block-a", Name: "A", Description: "Main Building"},
			{ID: "block-b", Name: "B", Description: "Annex Building"},
		},
		Floors: []domain.Floor{
			{ID: 1, Name: "Ground Floor", BlockID: "block-a", Rooms: groundRooms},
			{ID: 2, Name: "First Floor", BlockID: "block-a", Rooms: firstRooms},
		},
	}
}
