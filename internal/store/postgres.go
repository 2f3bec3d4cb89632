package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/lib/pq"

	"github.com/haasonsaas/interviewd/internal/ierrors"
	"github.com/haasonsaas/interviewd/internal/interview"
)

// PostgresConfig holds connection parameters for the Postgres-backed Store.
type PostgresConfig struct {
	Host            string
	Port            int
	User            string
	Password        string
	Database        string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnectTimeout  time.Duration
}

// DefaultPostgresConfig returns sane local-development defaults.
func DefaultPostgresConfig() PostgresConfig {
	return PostgresConfig{
		Host:            "localhost",
		Port:            5432,
		User:            "postgres",
		Database:        "interviewd",
		SSLMode:         "disable",
		MaxOpenConns:    25,
		MaxIdleConns:    5,
		ConnMaxLifetime: 5 * time.Minute,
		ConnectTimeout:  10 * time.Second,
	}
}

// PostgresStore implements Store against a Postgres database via lib/pq.
type PostgresStore struct {
	db *sql.DB

	stmtGetInterview      *sql.Stmt
	stmtGetInterviewByKey *sql.Stmt
	stmtUpdateStatus      *sql.Stmt
	stmtGetPlannerFields  *sql.Stmt
	stmtGetSolution       *sql.Stmt
	stmtUpsertSolution    *sql.Stmt
	stmtAppendTranscript  *sql.Stmt
}

// NewPostgresStore opens a connection pool per cfg and prepares statements.
func NewPostgresStore(cfg PostgresConfig) (*PostgresStore, error) {
	dsn := fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s connect_timeout=%d",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.Database, cfg.SSLMode, int(cfg.ConnectTimeout.Seconds()),
	)
	return newPostgresStoreWithDSN(dsn, cfg)
}

// NewPostgresStoreFromDSN opens a connection pool from a raw DSN/URL.
func NewPostgresStoreFromDSN(dsn string, cfg PostgresConfig) (*PostgresStore, error) {
	if dsn == "" {
		return nil, fmt.Errorf("dsn is required")
	}
	return newPostgresStoreWithDSN(dsn, cfg)
}

func newPostgresStoreWithDSN(dsn string, cfg PostgresConfig) (*PostgresStore, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if cfg.MaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		db.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.ConnMaxLifetime > 0 {
		db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}

	connectTimeout := cfg.ConnectTimeout
	if connectTimeout <= 0 {
		connectTimeout = 10 * time.Second
	}
	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	s := &PostgresStore{db: db}
	if err := s.prepareStatements(); err != nil {
		db.Close()
		return nil, fmt.Errorf("prepare statements: %w", err)
	}
	return s, nil
}

func (s *PostgresStore) prepareStatements() error {
	var err error

	s.stmtGetInterview, err = s.db.Prepare(`
		SELECT id, user_id, mock_interview_id, status, recording_url, code_editor_snapshot, design_editor_snapshot
		FROM candidate_interviews WHERE id = $1
	`)
	if err != nil {
		return fmt.Errorf("get interview: %w", err)
	}

	s.stmtGetInterviewByKey, err = s.db.Prepare(`
		SELECT id, user_id, mock_interview_id, status, recording_url, code_editor_snapshot, design_editor_snapshot
		FROM candidate_interviews WHERE mock_interview_id = $1 AND user_id = $2
	`)
	if err != nil {
		return fmt.Errorf("get interview by key: %w", err)
	}

	s.stmtUpdateStatus, err = s.db.Prepare(`
		UPDATE candidate_interviews SET status = $1, updated_at = now() WHERE id = $2
	`)
	if err != nil {
		return fmt.Errorf("update status: %w", err)
	}

	s.stmtGetPlannerFields, err = s.db.Prepare(`
		SELECT sequence, duration_minutes, question_id, knowledge_bank_id, question_text, tool_names, tool_properties, interview_instructions
		FROM interview_planner_fields WHERE interview_planner_id = $1 ORDER BY sequence
	`)
	if err != nil {
		return fmt.Errorf("get planner fields: %w", err)
	}

	s.stmtGetSolution, err = s.db.Prepare(`
		SELECT question_id, candidate_interview_id, type, answer
		FROM question_solutions WHERE question_id = $1 AND candidate_interview_id = $2
	`)
	if err != nil {
		return fmt.Errorf("get solution: %w", err)
	}

	s.stmtUpsertSolution, err = s.db.Prepare(`
		INSERT INTO question_solutions (question_id, candidate_interview_id, type, answer, updated_at)
		VALUES ($1, $2, $3, $4, now())
		ON CONFLICT (question_id, candidate_interview_id)
		DO UPDATE SET type = EXCLUDED.type, answer = EXCLUDED.answer, updated_at = now()
	`)
	if err != nil {
		return fmt.Errorf("upsert solution: %w", err)
	}

	s.stmtAppendTranscript, err = s.db.Prepare(`
		INSERT INTO transcript_events (id, candidate_interview_id, sender, message, timestamp, session_id, is_code, code_language)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`)
	if err != nil {
		return fmt.Errorf("append transcript: %w", err)
	}

	return nil
}

func (s *PostgresStore) GetCandidateInterview(ctx context.Context, id string) (*interview.CandidateInterview, error) {
	return scanInterview(s.stmtGetInterview.QueryRowContext(ctx, id))
}

func (s *PostgresStore) GetCandidateInterviewByMockAndUser(ctx context.Context, mockInterviewID, userID string) (*interview.CandidateInterview, error) {
	return scanInterview(s.stmtGetInterviewByKey.QueryRowContext(ctx, mockInterviewID, userID))
}

func scanInterview(row *sql.Row) (*interview.CandidateInterview, error) {
	var ci interview.CandidateInterview
	var recordingURL, codeSnapshot, designSnapshot sql.NullString
	if err := row.Scan(&ci.ID, &ci.UserID, &ci.MockInterviewID, &ci.Status, &recordingURL, &codeSnapshot, &designSnapshot); err != nil {
		if err == sql.ErrNoRows {
			return nil, ierrors.NotFound("PostgresStore.GetCandidateInterview", ierrors.ErrNotFound)
		}
		return nil, ierrors.New(ierrors.KindTransientExternal, "PostgresStore.GetCandidateInterview", err)
	}
	ci.RecordingURL = recordingURL.String
	ci.CodeEditorSnapshot = codeSnapshot.String
	ci.DesignEditorSnapshot = designSnapshot.String
	return &ci, nil
}

func (s *PostgresStore) UpdateCandidateInterviewStatus(ctx context.Context, id string, status interview.CandidateInterviewStatus) error {
	res, err := s.stmtUpdateStatus.ExecContext(ctx, string(status), id)
	if err != nil {
		return ierrors.New(ierrors.KindTransientExternal, "PostgresStore.UpdateCandidateInterviewStatus", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return ierrors.New(ierrors.KindTransientExternal, "PostgresStore.UpdateCandidateInterviewStatus", err)
	}
	if n == 0 {
		return ierrors.NotFound("PostgresStore.UpdateCandidateInterviewStatus", ierrors.ErrNotFound)
	}
	return nil
}

func (s *PostgresStore) GetPlannerFields(ctx context.Context, interviewPlannerID string) ([]interview.PlannerField, error) {
	rows, err := s.stmtGetPlannerFields.QueryContext(ctx, interviewPlannerID)
	if err != nil {
		return nil, ierrors.New(ierrors.KindTransientExternal, "PostgresStore.GetPlannerFields", err)
	}
	defer rows.Close()

	var out []interview.PlannerField
	for rows.Next() {
		var p interview.PlannerField
		var toolNames, questionText, instructions sql.NullString
		var toolProps []byte
		if err := rows.Scan(&p.Sequence, &p.DurationMinutes, &p.QuestionID, &p.KnowledgeBankID, &questionText, &toolNames, &toolProps, &instructions); err != nil {
			return nil, ierrors.New(ierrors.KindTransientExternal, "PostgresStore.GetPlannerFields", err)
		}
		p.QuestionText = questionText.String
		p.InterviewInstructions = instructions.String
		p.ToolNames = interview.ParseToolNames(toolNames.String)
		if len(toolProps) > 0 {
			props, err := interview.ValidateToolProperties(toolProps)
			if err != nil {
				return nil, ierrors.New(ierrors.KindProtocolViolation, "PostgresStore.GetPlannerFields", err)
			}
			p.ToolProperties = props
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, ierrors.New(ierrors.KindTransientExternal, "PostgresStore.GetPlannerFields", err)
	}
	return out, nil
}

func (s *PostgresStore) GetQuestionSolution(ctx context.Context, questionID, candidateInterviewID string) (*interview.QuestionSolution, error) {
	row := s.stmtGetSolution.QueryRowContext(ctx, questionID, candidateInterviewID)
	var sol interview.QuestionSolution
	if err := row.Scan(&sol.QuestionID, &sol.CandidateInterviewID, &sol.Type, &sol.Answer); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, ierrors.New(ierrors.KindTransientExternal, "PostgresStore.GetQuestionSolution", err)
	}
	return &sol, nil
}

func (s *PostgresStore) UpsertQuestionSolution(ctx context.Context, sol interview.QuestionSolution) error {
	_, err := s.stmtUpsertSolution.ExecContext(ctx, sol.QuestionID, sol.CandidateInterviewID, string(sol.Type), sol.Answer)
	if err != nil {
		return ierrors.New(ierrors.KindTransientExternal, "PostgresStore.UpsertQuestionSolution", err)
	}
	return nil
}

func (s *PostgresStore) AppendTranscript(ctx context.Context, event interview.TranscriptEvent) error {
	_, err := s.stmtAppendTranscript.ExecContext(ctx,
		uuid.NewString(), event.CandidateInterviewID, string(event.Sender), event.Message,
		event.Timestamp, event.SessionID, event.IsCode, event.CodeLanguage)
	if err != nil {
		return ierrors.New(ierrors.KindTransientExternal, "PostgresStore.AppendTranscript", err)
	}
	return nil
}

func (s *PostgresStore) Close() error {
	return s.db.Close()
}
