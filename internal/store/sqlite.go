package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/haasonsaas/interviewd/internal/ierrors"
	"github.com/haasonsaas/interviewd/internal/interview"
)

// schemaSQLite creates the tables the SQLite-backed Store expects, for
// local development and single-process deployments that don't run Postgres.
const schemaSQLite = `
CREATE TABLE IF NOT EXISTS candidate_interviews (
	id TEXT PRIMARY KEY,
	user_id TEXT NOT NULL,
	mock_interview_id TEXT NOT NULL,
	status TEXT NOT NULL,
	recording_url TEXT,
	code_editor_snapshot TEXT,
	design_editor_snapshot TEXT
);
CREATE INDEX IF NOT EXISTS idx_candidate_interviews_mock_user ON candidate_interviews(mock_interview_id, user_id);

CREATE TABLE IF NOT EXISTS interview_planner_fields (
	interview_planner_id TEXT NOT NULL,
	sequence INTEGER NOT NULL,
	duration_minutes INTEGER NOT NULL,
	question_id TEXT,
	knowledge_bank_id TEXT,
	question_text TEXT,
	tool_names TEXT,
	tool_properties TEXT,
	interview_instructions TEXT,
	PRIMARY KEY (interview_planner_id, sequence)
);

CREATE TABLE IF NOT EXISTS question_solutions (
	question_id TEXT NOT NULL,
	candidate_interview_id TEXT NOT NULL,
	type TEXT NOT NULL,
	answer TEXT NOT NULL,
	PRIMARY KEY (question_id, candidate_interview_id)
);

CREATE TABLE IF NOT EXISTS transcript_events (
	id TEXT PRIMARY KEY,
	candidate_interview_id TEXT NOT NULL,
	sender TEXT NOT NULL,
	message TEXT NOT NULL,
	timestamp DATETIME NOT NULL,
	session_id TEXT NOT NULL,
	is_code BOOLEAN NOT NULL DEFAULT 0,
	code_language TEXT
);
`

// SQLiteStore implements Store against a pure-Go SQLite database
// (modernc.org/sqlite), used for local development and single-process
// deployments without an external Postgres instance.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (creating if necessary) path and applies the schema.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	db.SetMaxOpenConns(1) // modernc.org/sqlite serializes writers; avoid lock contention

	if _, err := db.Exec(schemaSQLite); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) GetCandidateInterview(ctx context.Context, id string) (*interview.CandidateInterview, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, user_id, mock_interview_id, status, recording_url, code_editor_snapshot, design_editor_snapshot
		FROM candidate_interviews WHERE id = ?`, id)
	return scanSQLiteInterview(row)
}

func (s *SQLiteStore) GetCandidateInterviewByMockAndUser(ctx context.Context, mockInterviewID, userID string) (*interview.CandidateInterview, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, user_id, mock_interview_id, status, recording_url, code_editor_snapshot, design_editor_snapshot
		FROM candidate_interviews WHERE mock_interview_id = ? AND user_id = ?`, mockInterviewID, userID)
	return scanSQLiteInterview(row)
}

func scanSQLiteInterview(row *sql.Row) (*interview.CandidateInterview, error) {
	var ci interview.CandidateInterview
	var recordingURL, codeSnapshot, designSnapshot sql.NullString
	if err := row.Scan(&ci.ID, &ci.UserID, &ci.MockInterviewID, &ci.Status, &recordingURL, &codeSnapshot, &designSnapshot); err != nil {
		if err == sql.ErrNoRows {
			return nil, ierrors.NotFound("SQLiteStore.GetCandidateInterview", ierrors.ErrNotFound)
		}
		return nil, ierrors.New(ierrors.KindPersistentExternal, "SQLiteStore.GetCandidateInterview", err)
	}
	ci.RecordingURL = recordingURL.String
	ci.CodeEditorSnapshot = codeSnapshot.String
	ci.DesignEditorSnapshot = designSnapshot.String
	return &ci, nil
}

func (s *SQLiteStore) UpdateCandidateInterviewStatus(ctx context.Context, id string, status interview.CandidateInterviewStatus) error {
	res, err := s.db.ExecContext(ctx, `UPDATE candidate_interviews SET status = ? WHERE id = ?`, string(status), id)
	if err != nil {
		return ierrors.New(ierrors.KindPersistentExternal, "SQLiteStore.UpdateCandidateInterviewStatus", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return ierrors.New(ierrors.KindPersistentExternal, "SQLiteStore.UpdateCandidateInterviewStatus", err)
	}
	if n == 0 {
		return ierrors.NotFound("SQLiteStore.UpdateCandidateInterviewStatus", ierrors.ErrNotFound)
	}
	return nil
}

func (s *SQLiteStore) GetPlannerFields(ctx context.Context, interviewPlannerID string) ([]interview.PlannerField, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT sequence, duration_minutes, question_id, knowledge_bank_id, question_text, tool_names, tool_properties, interview_instructions
		FROM interview_planner_fields WHERE interview_planner_id = ? ORDER BY sequence`, interviewPlannerID)
	if err != nil {
		return nil, ierrors.New(ierrors.KindPersistentExternal, "SQLiteStore.GetPlannerFields", err)
	}
	defer rows.Close()

	var out []interview.PlannerField
	for rows.Next() {
		var p interview.PlannerField
		var questionID, knowledgeBankID, questionText, toolNames, instructions sql.NullString
		var toolProps sql.NullString
		if err := rows.Scan(&p.Sequence, &p.DurationMinutes, &questionID, &knowledgeBankID, &questionText, &toolNames, &toolProps, &instructions); err != nil {
			return nil, ierrors.New(ierrors.KindPersistentExternal, "SQLiteStore.GetPlannerFields", err)
		}
		p.QuestionID = questionID.String
		p.KnowledgeBankID = knowledgeBankID.String
		p.QuestionText = questionText.String
		p.InterviewInstructions = instructions.String
		p.ToolNames = interview.ParseToolNames(toolNames.String)
		if toolProps.Valid && toolProps.String != "" {
			props, err := interview.ValidateToolProperties([]byte(toolProps.String))
			if err != nil {
				return nil, ierrors.New(ierrors.KindProtocolViolation, "SQLiteStore.GetPlannerFields", err)
			}
			p.ToolProperties = props
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, ierrors.New(ierrors.KindPersistentExternal, "SQLiteStore.GetPlannerFields", err)
	}
	return out, nil
}

func (s *SQLiteStore) GetQuestionSolution(ctx context.Context, questionID, candidateInterviewID string) (*interview.QuestionSolution, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT question_id, candidate_interview_id, type, answer
		FROM question_solutions WHERE question_id = ? AND candidate_interview_id = ?`, questionID, candidateInterviewID)
	var sol interview.QuestionSolution
	if err := row.Scan(&sol.QuestionID, &sol.CandidateInterviewID, &sol.Type, &sol.Answer); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, ierrors.New(ierrors.KindPersistentExternal, "SQLiteStore.GetQuestionSolution", err)
	}
	return &sol, nil
}

func (s *SQLiteStore) UpsertQuestionSolution(ctx context.Context, sol interview.QuestionSolution) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO question_solutions (question_id, candidate_interview_id, type, answer)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(question_id, candidate_interview_id) DO UPDATE SET type = excluded.type, answer = excluded.answer
	`, sol.QuestionID, sol.CandidateInterviewID, string(sol.Type), sol.Answer)
	if err != nil {
		return ierrors.New(ierrors.KindPersistentExternal, "SQLiteStore.UpsertQuestionSolution", err)
	}
	return nil
}

func (s *SQLiteStore) AppendTranscript(ctx context.Context, event interview.TranscriptEvent) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO transcript_events (id, candidate_interview_id, sender, message, timestamp, session_id, is_code, code_language)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, uuid.NewString(), event.CandidateInterviewID, string(event.Sender), event.Message, event.Timestamp, event.SessionID, event.IsCode, event.CodeLanguage)
	if err != nil {
		return ierrors.New(ierrors.KindPersistentExternal, "SQLiteStore.AppendTranscript", err)
	}
	return nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
