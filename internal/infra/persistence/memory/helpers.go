package memory

import "strconv"

func itoa(id int) string { return strconv.Itoa(id) }

func defaultFloorName(id int) string { return "Floor " + strconv.Itoa(id) }
