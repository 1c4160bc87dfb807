package httpapi

import (
	"github.com/gofiber/fiber/v2"

	"hallcore/pkg/domain"
)

func parseBody[T any](c *fiber.Ctx) (T, error) {
	var req T
	if err := c.BodyParser(&req); err != nil {
		return req, fiber.NewError(fiber.StatusBadRequest, "malformed request body")
	}
	if err := validate.Struct(req); err != nil {
		return req, err
	}
	return req, nil
}

func (s *server) listBlocks(c *fiber.Ctx) error {
	return c.JSON(s.service.Blocks())
}

func (s *server) addBlock(c *fiber.Ctx) error {
	req, err := parseBody[blockRequest](c)
	if err != nil {
		return err
	}
	block, _, err := s.service.AddBlock(c.Context(), req.Name, req.Description)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(block)
}

func (s *server) updateBlock(c *fiber.Ctx) error {
	req, err := parseBody[blockRequest](c)
	if err != nil {
		return err
	}
	block, _, err := s.service.UpdateBlock(c.Context(), c.Params("blockID"), req.Name, req.Description)
	if err != nil {
		return err
	}
	return c.JSON(block)
}

func (s *server) deleteBlock(c *fiber.Ctx) error {
	if _, err := s.service.DeleteBlock(c.Context(), c.Params("blockID")); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (s *server) listBlockFloors(c *fiber.Ctx) error {
	blockID := c.Params("blockID")
	if _, ok := s.service.Block(blockID); !ok {
		return domain.ErrNotFound{Entity: domain.EntityBlock, ID: blockID}
	}
	floors := s.service.FloorsByBlock(blockID)
	if floors == nil {
		floors = []domain.Floor{}
	}
	return c.JSON(floors)
}

func (s *server) blockStats(c *fiber.Ctx) error {
	blockID := c.Params("blockID")
	if _, ok := s.service.Block(blockID); !ok {
		return domain.ErrNotFound{Entity: domain.EntityBlock, ID: blockID}
	}
	return c.JSON(s.service.BlockStats(blockID))
}

func (s *server) listFloors(c *fiber.Ctx) error {
	return c.JSON(s.service.Floors())
}

func (s *server) addFloor(c *fiber.Ctx) error {
	req, err := parseBody[floorRequest](c)
	if err != nil {
		return err
	}
	floor, _, err := s.service.AddFloor(c.Context(), req.Name, req.BlockID)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(floor)
}

func (s *server) floorID(c *fiber.Ctx) (int, error) {
	id, err := c.ParamsInt("floorID")
	if err != nil || id < 1 {
		return 0, fiber.NewError(fiber.StatusBadRequest, "invalid floor id")
	}
	return id, nil
}

func (s *server) roomID(c *fiber.Ctx) (int, error) {
	id, err := c.ParamsInt("roomID")
	if err != nil || id < 1 {
		return 0, fiber.NewError(fiber.StatusBadRequest, "invalid room id")
	}
	return id, nil
}

func (s *server) getFloor(c *fiber.Ctx) error {
	id, err := s.floorID(c)
	if err != nil {
		return err
	}
	floor, ok := s.service.Floor(id)
	if !ok {
		return domain.ErrNotFound{Entity: domain.EntityFloor, ID: c.Params("floorID")}
	}
	return c.JSON(floor)
}

func (s *server) deleteFloor(c *fiber.Ctx) error {
	id, err := s.floorID(c)
	if err != nil {
		return err
	}
	if _, err := s.service.DeleteFloor(c.Context(), id); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (s *server) floorStats(c *fiber.Ctx) error {
	id, err := s.floorID(c)
	if err != nil {
		return err
	}
	if _, ok := s.service.Floor(id); !ok {
		return domain.ErrNotFound{Entity: domain.EntityFloor, ID: c.Params("floorID")}
	}
	return c.JSON(s.service.FloorStats(id))
}

func (s *server) addRoom(c *fiber.Ctx) error {
	floorID, err := s.floorID(c)
	if err != nil {
		return err
	}
	req, err := parseBody[roomRequest](c)
	if err != nil {
		return err
	}
	room, _, err := s.service.AddRoom(c.Context(), floorID, req.ID)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(room)
}

func (s *server) deleteRoom(c *fiber.Ctx) error {
	floorID, err := s.floorID(c)
	if err != nil {
		return err
	}
	roomID, err := s.roomID(c)
	if err != nil {
		return err
	}
	if _, err := s.service.DeleteRoom(c.Context(), floorID, roomID); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}
