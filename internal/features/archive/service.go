package archive

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"go-formflow/internal/config"
	"go-formflow/internal/features/audit"

	_ "github.com/lib/pq"
	"go.uber.org/zap"
)

const batchSize = 1000

const createTableStmt = `
CREATE TABLE IF NOT EXISTS audit_archive (
	id            TEXT PRIMARY KEY,
	actor_id      TEXT,
	action        TEXT NOT NULL,
	resource_type TEXT NOT NULL,
	resource_id   TEXT,
	description   TEXT,
	old_data      JSONB,
	new_data      JSONB,
	ip_address    TEXT,
	user_agent    TEXT,
	recorded_at   TIMESTAMPTZ NOT NULL
)`

const insertStmt = `
INSERT INTO audit_archive
	(id, actor_id, action, resource_type, resource_id, description, old_data, new_data, ip_address, user_agent, recorded_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
ON CONFLICT (id) DO NOTHING`

// ArchiveService ships audit records to a Postgres warehouse. Records
// are copied from a high-water mark forward, so repeated runs are
// idempotent and a failed run resumes where the last one stopped.
type ArchiveService interface {
	RunSync(ctx context.Context) (int, error)
	Status(ctx context.Context) (*State, error)
	Enabled() bool
}

type ArchiveServiceImpl struct {
	AuditRepo audit.AuditRepository
	StateRepo StateRepository
	DSN       string
	Logger    *zap.Logger
}

func NewArchiveService(auditRepo audit.AuditRepository, stateRepo StateRepository, cfg *config.Config, logger *zap.Logger) ArchiveService {
	return &ArchiveServiceImpl{
		AuditRepo: auditRepo,
		StateRepo: stateRepo,
		DSN:       cfg.ArchiveDSN,
		Logger:    logger,
	}
}

func (s *ArchiveServiceImpl) Enabled() bool {
	return s.DSN != ""
}

func (s *ArchiveServiceImpl) Status(ctx context.Context) (*State, error) {
	return s.StateRepo.Get(ctx, targetAuditWarehouse)
}

func (s *ArchiveServiceImpl) RunSync(ctx context.Context) (int, error) {
	if !s.Enabled() {
		return 0, nil
	}

	state, err := s.StateRepo.Get(ctx, targetAuditWarehouse)
	if err != nil {
		return 0, err
	}

	db, err := sql.Open("postgres", s.DSN)
	if err != nil {
		return 0, s.finish(ctx, state, 0, err)
	}
	defer db.Close()

	if _, err := db.ExecContext(ctx, createTableStmt); err != nil {
		return 0, s.finish(ctx, state, 0, err)
	}

	total := 0
	mark := state.LastSyncedAt
	for {
		batch, err := s.AuditRepo.ListAfter(ctx, mark, batchSize)
		if err != nil {
			return total, s.finish(ctx, state, total, err)
		}
		if len(batch) == 0 {
			break
		}

		for i := range batch {
			record := &batch[i]
			oldData, newData := marshalData(record.OldData), marshalData(record.NewData)

			var ip, agent string
			if record.Origin != nil {
				ip = record.Origin.IPAddress
				agent = record.Origin.UserAgent
			}

			_, err := db.ExecContext(ctx, insertStmt,
				record.ID.Hex(), record.ActorID, string(record.Action),
				string(record.ResourceType), record.ResourceID, record.Description,
				oldData, newData, ip, agent, record.Timestamp)
			if err != nil {
				return total, s.finish(ctx, state, total, err)
			}
			total++
			mark = record.Timestamp
		}

		state.LastSyncedAt = mark
		if err := s.StateRepo.Save(ctx, state); err != nil {
			return total, err
		}
		if len(batch) < batchSize {
			break
		}
	}

	return total, s.finish(ctx, state, total, nil)
}

func (s *ArchiveServiceImpl) finish(ctx context.Context, state *State, count int, runErr error) error {
	state.LastRunAt = time.Now()
	state.LastCount = count
	state.LastError = ""
	if runErr != nil {
		state.LastError = runErr.Error()
		s.Logger.Error("audit archive sync failed",
			zap.Int("archived", count), zap.Error(runErr))
	} else {
		s.Logger.Info("audit archive sync completed", zap.Int("archived", count))
	}

	if err := s.StateRepo.Save(ctx, state); err != nil {
		s.Logger.Error("archive state save failed", zap.Error(err))
	}
	return runErr
}

// marshalData renders arbitrary audit payloads as JSONB, NULL when
// absent or unmarshalable.
func marshalData(v interface{}) interface{} {
	if v == nil {
		return nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return nil
	}
	return data
}
