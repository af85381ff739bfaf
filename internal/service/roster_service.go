package service

import (
	"context"
	"fmt"
	"log"
	"strings"

	"reporthub/internal/models"
	"reporthub/internal/repository"
	"reporthub/internal/roster"
	"reporthub/internal/validation"
)

// RosterService runs reconciliation and manages administrator overrides
type RosterService struct {
	base            *roster.BaseData
	reports         *repository.ReportRepository
	members         *repository.RosterRepository
	overrides       *repository.OverrideRepository
	superintendents *repository.SuperintendentRepository
}

func NewRosterService(base *roster.BaseData, reports *repository.ReportRepository, members *repository.RosterRepository,
	overrides *repository.OverrideRepository, superintendents *repository.SuperintendentRepository) *RosterService {
	return &RosterService{
		base:            base,
		reports:         reports,
		members:         members,
		overrides:       overrides,
		superintendents: superintendents,
	}
}

// SeedSuperintendents makes the superintendents table match the base data
func (s *RosterService) SeedSuperintendents(ctx context.Context) error {
	for _, seed := range s.base.Superintendents {
		if err := s.superintendents.Upsert(ctx, seed.Name, seed.Group); err != nil {
			return err
		}
	}
	log.Printf("Seeded %d superintendents", len(s.base.Superintendents))
	return nil
}

// Reconcile compares the reports of p against the roster
func (s *RosterService) Reconcile(ctx context.Context, p models.Period) (*roster.Report, error) {
	reports, err := s.reports.ListForPeriod(ctx, p)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBackendUnavailable, err)
	}
	custom, err := s.members.ListCustomMembers(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBackendUnavailable, err)
	}
	flags, err := s.overrides.ListFlags(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBackendUnavailable, err)
	}
	mappings, err := s.overrides.ListMappings(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBackendUnavailable, err)
	}

	report := roster.Run(roster.Input{
		Period:   p,
		Base:     s.base.Members,
		Custom:   custom,
		Reports:  reports,
		Flags:    flags,
		Mappings: mappings,
	})
	return &report, nil
}

// AddToRoster adds a member, or moves an existing custom member to group
func (s *RosterService) AddToRoster(ctx context.Context, fullName string, group int) error {
	name := strings.Join(strings.Fields(fullName), " ")
	key := roster.Normalize(name)
	if key == "" {
		return validation.ValidationError{Field: "full_name", Message: "name is required"}
	}
	if err := validation.ValidateGroup(group); err != nil {
		return err
	}
	return s.members.UpsertCustomMember(ctx, name, key, group)
}

// RemoveFromRoster deactivates a custom member
func (s *RosterService) RemoveFromRoster(ctx context.Context, id int64) error {
	return s.members.DeactivateCustomMember(ctx, id)
}

// CustomMembers lists administrator-added members
func (s *RosterService) CustomMembers(ctx context.Context) ([]models.CustomMember, error) {
	return s.members.ListCustomMembers(ctx)
}

// SetMapping attributes reports submitted as alias to canonicalName
func (s *RosterService) SetMapping(ctx context.Context, alias, canonicalName string) error {
	key := roster.Normalize(alias)
	if key == "" {
		return validation.ValidationError{Field: "alias", Message: "alias is required"}
	}
	canonical := strings.Join(strings.Fields(canonicalName), " ")
	if roster.Normalize(canonical) == "" {
		return validation.ValidationError{Field: "canonical_full_name", Message: "canonical name is required"}
	}
	return s.overrides.UpsertMapping(ctx, key, canonical)
}

// DeleteMapping removes the mapping of alias
func (s *RosterService) DeleteMapping(ctx context.Context, alias string) error {
	return s.overrides.DeleteMapping(ctx, roster.Normalize(alias))
}

// Mappings lists all name mappings
func (s *RosterService) Mappings(ctx context.Context) ([]models.NameMapping, error) {
	return s.overrides.ListMappings(ctx)
}

// FlagInput is an administrator decision about one report
type FlagInput struct {
	IsDuplicate       bool    `json:"is_duplicate"`
	CanonicalFullName *string `json:"canonical_full_name"`
	Note              string  `json:"note"`
}

// SetFlag records a decision about a report
func (s *RosterService) SetFlag(ctx context.Context, reportID int64, in FlagInput) (*models.ReportFlag, error) {
	rep, err := s.reports.Get(ctx, reportID)
	if err != nil {
		return nil, err
	}
	if rep == nil {
		return nil, ErrNotFound
	}

	flag := &models.ReportFlag{
		ReportID:    reportID,
		IsDuplicate: in.IsDuplicate,
		Note:        strings.TrimSpace(in.Note),
	}
	if in.CanonicalFullName != nil {
		if name := strings.Join(strings.Fields(*in.CanonicalFullName), " "); name != "" {
			flag.CanonicalFullName = &name
		}
	}
	if err := s.overrides.UpsertFlag(ctx, flag); err != nil {
		return nil, err
	}
	return flag, nil
}

// DeleteFlag removes the decision about a report
func (s *RosterService) DeleteFlag(ctx context.Context, reportID int64) error {
	return s.overrides.DeleteFlag(ctx, reportID)
}
