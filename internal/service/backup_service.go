package service

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"reporthub/internal/database"
	"reporthub/internal/models"
	"reporthub/internal/repository"
)

// BackupVersion is written into every export
const BackupVersion = "1.0"

// BackupData represents the complete database backup structure
type BackupData struct {
	Version         string                    `json:"version"`
	ExportedAt      time.Time                 `json:"exported_at"`
	DatabaseType    string                    `json:"database_type"`
	Admins          []AdminBackup             `json:"admins"`
	Superintendents []models.Superintendent   `json:"superintendents"`
	Reports         []models.ServiceReport    `json:"reports"`
	CustomMembers   []models.CustomMember     `json:"custom_members"`
	NameMappings    []models.NameMapping      `json:"name_mappings"`
	ReportFlags     []models.ReportFlag       `json:"report_flags"`
	Attendance      []models.AttendanceRecord `json:"attendance"`
	Subscriptions   []models.PushSubscription `json:"subscriptions"`
}

// AdminBackup represents an admin account for backup
type AdminBackup struct {
	Email         string           `json:"email"`
	PasswordHash  string           `json:"password_hash"`
	Name          string           `json:"name"`
	Role          models.AdminRole `json:"role"`
	OAuthProvider string           `json:"oauth_provider,omitempty"`
	OAuthSubject  string           `json:"oauth_subject,omitempty"`
}

// ImportOptions controls how a backup is applied
type ImportOptions struct {
	// ReplaceReports deletes every existing report before importing
	ReplaceReports bool
}

// BackupService exports and imports the database as portable JSON, so data
// can move between SQLite, PostgreSQL and MySQL
type BackupService struct {
	db *database.DB
}

// NewBackupService creates a new backup service
func NewBackupService(db *database.DB) *BackupService {
	return &BackupService{db: db}
}

// Snapshot reads every table into a BackupData
func (s *BackupService) Snapshot(ctx context.Context) (*BackupData, error) {
	backup := &BackupData{
		Version:      BackupVersion,
		ExportedAt:   time.Now().UTC(),
		DatabaseType: s.db.Dialect.DriverName(),
	}

	users, err := repository.NewUserRepository(s.db).ListUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to export admins: %w", err)
	}
	for _, u := range users {
		backup.Admins = append(backup.Admins, AdminBackup{
			Email:         u.Email,
			PasswordHash:  u.PasswordHash,
			Name:          u.Name,
			Role:          u.Role,
			OAuthProvider: u.OAuthProvider,
			OAuthSubject:  u.OAuthSubject,
		})
	}

	if backup.Superintendents, err = repository.NewSuperintendentRepository(s.db).List(ctx); err != nil {
		return nil, fmt.Errorf("failed to export superintendents: %w", err)
	}
	if backup.Reports, err = repository.NewReportRepository(s.db).List(ctx, models.ReportFilter{}); err != nil {
		return nil, fmt.Errorf("failed to export reports: %w", err)
	}
	if backup.CustomMembers, err = repository.NewRosterRepository(s.db).ListCustomMembers(ctx); err != nil {
		return nil, fmt.Errorf("failed to export custom members: %w", err)
	}

	overrides := repository.NewOverrideRepository(s.db)
	if backup.NameMappings, err = overrides.ListMappings(ctx); err != nil {
		return nil, fmt.Errorf("failed to export name mappings: %w", err)
	}
	if backup.ReportFlags, err = overrides.ListFlags(ctx); err != nil {
		return nil, fmt.Errorf("failed to export report flags: %w", err)
	}
	if backup.Attendance, err = repository.NewAttendanceRepository(s.db).List(ctx, nil); err != nil {
		return nil, fmt.Errorf("failed to export attendance: %w", err)
	}
	if backup.Subscriptions, err = repository.NewPushRepository(s.db).ListAll(ctx); err != nil {
		return nil, fmt.Errorf("failed to export subscriptions: %w", err)
	}
	return backup, nil
}

// Export writes the backup as indented JSON
func (s *BackupService) Export(ctx context.Context, w io.Writer) (*BackupData, error) {
	backup, err := s.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(backup); err != nil {
		return nil, fmt.Errorf("failed to encode backup: %w", err)
	}
	log.Printf("Exported: %d admins, %d superintendents, %d reports, %d custom members, %d mappings, %d flags, %d attendance records, %d subscriptions",
		len(backup.Admins), len(backup.Superintendents), len(backup.Reports), len(backup.CustomMembers),
		len(backup.NameMappings), len(backup.ReportFlags), len(backup.Attendance), len(backup.Subscriptions))
	return backup, nil
}

// ExportFile writes the backup to outputPath
func (s *BackupService) ExportFile(ctx context.Context, outputPath string) error {
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer file.Close()

	if _, err := s.Export(ctx, file); err != nil {
		return err
	}
	log.Printf("Database exported successfully to %s", outputPath)
	return nil
}

// ImportFile applies the backup stored at inputPath
func (s *BackupService) ImportFile(ctx context.Context, inputPath string, opts ImportOptions) error {
	file, err := os.Open(inputPath)
	if err != nil {
		return fmt.Errorf("failed to open input file: %w", err)
	}
	defer file.Close()
	return s.Import(ctx, file, opts)
}

// Import applies a backup inside a single transaction. Records are matched on
// their natural keys, so report flags follow their reports to new IDs and
// reports follow their superintendent by group number.
func (s *BackupService) Import(ctx context.Context, r io.Reader, opts ImportOptions) error {
	var backup BackupData
	if err := json.NewDecoder(r).Decode(&backup); err != nil {
		return fmt.Errorf("failed to decode backup: %w", err)
	}
	if backup.Version != BackupVersion {
		return fmt.Errorf("unsupported backup version %q", backup.Version)
	}

	log.Printf("Backup version: %s, exported at: %s from %s", backup.Version, backup.ExportedAt, backup.DatabaseType)

	err := s.db.WithTx(ctx, func(tx *database.Tx) error {
		if err := importAdmins(ctx, tx, backup.Admins); err != nil {
			return fmt.Errorf("failed to import admins: %w", err)
		}
		groups, err := importSuperintendents(ctx, tx, backup.Superintendents)
		if err != nil {
			return fmt.Errorf("failed to import superintendents: %w", err)
		}
		reportIDs, err := importReports(ctx, tx, backup.Reports, groups, opts.ReplaceReports)
		if err != nil {
			return fmt.Errorf("failed to import reports: %w", err)
		}
		if err := importRoster(ctx, tx, &backup, reportIDs); err != nil {
			return err
		}
		if err := importAttendance(ctx, tx, backup.Attendance); err != nil {
			return fmt.Errorf("failed to import attendance: %w", err)
		}
		if err := importSubscriptions(ctx, tx, backup.Subscriptions); err != nil {
			return fmt.Errorf("failed to import subscriptions: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	log.Println("Database import completed successfully")
	return nil
}

func importAdmins(ctx context.Context, tx *database.Tx, admins []AdminBackup) error {
	users := repository.NewUserRepository(tx)
	for _, a := range admins {
		existing, err := users.GetUserByEmail(ctx, a.Email)
		if err != nil {
			return err
		}
		if existing != nil {
			continue
		}
		u, err := users.CreateUser(ctx, a.Email, a.PasswordHash, a.Name)
		if err != nil {
			return err
		}
		if a.Role.Valid() && a.Role != u.Role {
			if err := users.UpdateRole(ctx, u.ID, a.Role); err != nil {
				return err
			}
		}
		if a.OAuthProvider != "" {
			if err := users.LinkOAuthProvider(ctx, u.ID, a.OAuthProvider, a.OAuthSubject); err != nil {
				return err
			}
		}
		if err := users.AddToAllowlist(ctx, a.Email); err != nil {
			return err
		}
	}
	return nil
}

// importSuperintendents returns the new superintendent ID of every group
func importSuperintendents(ctx context.Context, tx *database.Tx, sups []models.Superintendent) (map[int]int64, error) {
	repo := repository.NewSuperintendentRepository(tx)
	for _, sup := range sups {
		if err := repo.Upsert(ctx, sup.Name, sup.GroupNumber); err != nil {
			return nil, err
		}
	}
	current, err := repo.List(ctx)
	if err != nil {
		return nil, err
	}
	groups := make(map[int]int64, len(current))
	for _, sup := range current {
		groups[sup.GroupNumber] = sup.ID
	}
	return groups, nil
}

// importReports returns the new ID of every imported report keyed by its old ID
func importReports(ctx context.Context, tx *database.Tx, reports []models.ServiceReport, groups map[int]int64, replace bool) (map[int64]int64, error) {
	repo := repository.NewReportRepository(tx)
	if replace {
		n, err := repo.DeleteAll(ctx)
		if err != nil {
			return nil, err
		}
		log.Printf("Removed %d existing reports before import", n)
	}

	ids := make(map[int64]int64, len(reports))
	for i := range reports {
		rep := reports[i]
		oldID := rep.ID
		rep.SuperintendentID = nil
		if id, ok := groups[rep.GroupNumber]; ok && rep.GroupNumber > 0 {
			rep.SuperintendentID = &id
		}
		if err := repo.Create(ctx, &rep); err != nil {
			return nil, err
		}
		ids[oldID] = rep.ID
	}
	return ids, nil
}

func importRoster(ctx context.Context, tx *database.Tx, backup *BackupData, reportIDs map[int64]int64) error {
	members := repository.NewRosterRepository(tx)
	for _, m := range backup.CustomMembers {
		if !m.IsActive {
			continue
		}
		if err := members.UpsertCustomMember(ctx, m.FullName, m.NameKey, m.GroupNumber); err != nil {
			return fmt.Errorf("failed to import custom members: %w", err)
		}
	}

	overrides := repository.NewOverrideRepository(tx)
	for _, m := range backup.NameMappings {
		if err := overrides.UpsertMapping(ctx, m.AliasNormalized, m.CanonicalFullName); err != nil {
			return fmt.Errorf("failed to import name mappings: %w", err)
		}
	}
	for i := range backup.ReportFlags {
		flag := backup.ReportFlags[i]
		newID, ok := reportIDs[flag.ReportID]
		if !ok {
			log.Printf("Skipping flag for report %d: report not in backup", flag.ReportID)
			continue
		}
		flag.ReportID = newID
		if err := overrides.UpsertFlag(ctx, &flag); err != nil {
			return fmt.Errorf("failed to import report flags: %w", err)
		}
	}
	return nil
}

func importAttendance(ctx context.Context, tx *database.Tx, records []models.AttendanceRecord) error {
	repo := repository.NewAttendanceRepository(tx)
	for i := range records {
		if err := repo.Upsert(ctx, &records[i]); err != nil {
			return err
		}
	}
	return nil
}

func importSubscriptions(ctx context.Context, tx *database.Tx, subs []models.PushSubscription) error {
	repo := repository.NewPushRepository(tx)
	for i := range subs {
		sub := &subs[i]
		active := sub.IsActive
		if err := repo.Upsert(ctx, sub); err != nil {
			return err
		}
		if sub.LastReportMonth != "" {
			p, err := models.NewPeriod(sub.LastReportMonth, sub.LastReportYear)
			if err != nil {
				continue
			}
			if err := repo.MarkReported(ctx, sub, p); err != nil {
				return err
			}
		}
		if !active {
			if err := repo.Deactivate(ctx, sub.Endpoint); err != nil {
				return err
			}
		}
	}
	return nil
}
