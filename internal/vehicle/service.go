package vehicle

import (
	"context"
	"fmt"
	"strings"

	"github.com/mistamayor/berrymart-v1/internal/rbac"
	"github.com/mistamayor/berrymart-v1/internal/user"
)

// Service 车辆登记与配送员指派。
// 指派要同时写两侧关联（vehicle.assigned_agent_id / user.vehicle_id）。
type Service struct {
	repo  *Repo
	users *user.Repo
}

func NewService(repo *Repo, users *user.Repo) *Service {
	return &Service{repo: repo, users: users}
}

// CreateVehicleInput 车辆登记入参。
type CreateVehicleInput struct {
	Type         string
	Name         string
	LicensePlate string
	Capacity     int
	Status       string
	Notes        string
}

func (s *Service) Create(ctx context.Context, in CreateVehicleInput) (*Vehicle, error) {
	if s == nil || s.repo == nil {
		return nil, fmt.Errorf("service not initialized")
	}
	plate := strings.TrimSpace(in.LicensePlate)
	if plate == "" {
		return nil, fmt.Errorf("license_plate required")
	}
	if !ValidType(in.Type) {
		return nil, fmt.Errorf("invalid vehicle type: %s", in.Type)
	}
	st := strings.TrimSpace(in.Status)
	if st == "" {
		st = StatusActive
	}
	if !ValidStatus(st) {
		return nil, fmt.Errorf("invalid vehicle status: %s", st)
	}

	v := &Vehicle{
		Type:         in.Type,
		Name:         strings.TrimSpace(in.Name),
		LicensePlate: plate,
		Capacity:     in.Capacity,
		Status:       st,
		Notes:        strings.TrimSpace(in.Notes),
	}
	if err := s.repo.Create(ctx, v); err != nil {
		return nil, err
	}
	return v, nil
}

// UpdateStatus 变更车辆状态（active / maintenance / retired）。
// 车辆状态与订单状态相互独立：已发运订单不受车辆转入维修影响。
func (s *Service) UpdateStatus(ctx context.Context, id int64, status string) (*Vehicle, error) {
	if s == nil || s.repo == nil {
		return nil, fmt.Errorf("service not initialized")
	}
	if !ValidStatus(status) {
		return nil, fmt.Errorf("invalid vehicle status: %s", status)
	}
	v, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	v.Status = status
	if err := s.repo.Update(ctx, v); err != nil {
		return nil, err
	}
	return v, nil
}

// AssignAgent 将配送员指派到车辆。只有 DeliveryAgent 角色的用户可被指派。
func (s *Service) AssignAgent(ctx context.Context, vehicleID, agentID int64) (*Vehicle, error) {
	if s == nil || s.repo == nil || s.users == nil {
		return nil, fmt.Errorf("service not initialized")
	}

	v, err := s.repo.FindByID(ctx, vehicleID)
	if err != nil {
		return nil, err
	}
	agent, err := s.users.FindByID(ctx, agentID)
	if err != nil {
		return nil, err
	}
	if agent.Role != string(rbac.RoleDeliveryAgent) {
		return nil, fmt.Errorf("user %d is not a delivery agent", agentID)
	}

	v.AssignedAgentID = &agentID
	if err := s.repo.Update(ctx, v); err != nil {
		return nil, err
	}

	agent.VehicleID = &v.ID
	if err := s.users.Update(ctx, agent); err != nil {
		return nil, err
	}
	return v, nil
}

func (s *Service) Get(ctx context.Context, id int64) (*Vehicle, error) {
	if s == nil || s.repo == nil {
		return nil, fmt.Errorf("service not initialized")
	}
	return s.repo.FindByID(ctx, id)
}

func (s *Service) List(ctx context.Context, status string, offset, limit int) ([]Vehicle, int64, error) {
	if s == nil || s.repo == nil {
		return nil, 0, fmt.Errorf("service not initialized")
	}
	return s.repo.List(ctx, strings.TrimSpace(status), offset, limit)
}
