package main

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/haasonsaas/interviewd/internal/codepipeline"
	"github.com/haasonsaas/interviewd/internal/container"
	"github.com/haasonsaas/interviewd/internal/designpipeline"
	"github.com/haasonsaas/interviewd/internal/identity"
	"github.com/haasonsaas/interviewd/internal/interview"
	"github.com/haasonsaas/interviewd/internal/sttprovider"
	"github.com/haasonsaas/interviewd/internal/transport"
	"github.com/haasonsaas/interviewd/internal/ttsprovider"
)

// clientFrame is the envelope shape every inbound/outbound websocket message
// shares: a type discriminator plus the fields relevant to that type.
type clientFrame struct {
	Type                 string `json:"type"`
	QuestionID           string `json:"questionId"`
	CandidateInterviewID string `json:"candidateInterviewId"`
	Language             string `json:"language"`
	Content              string `json:"content"`
	Timestamp            int64  `json:"timestamp"`
	Audio                string `json:"audio"`
}

func bearerToken(r *http.Request) string {
	if auth := r.Header.Get("Authorization"); len(auth) > 7 && auth[:7] == "Bearer " {
		return auth[7:]
	}
	return r.URL.Query().Get("token")
}

// handleWebSocket upgrades the connection, resolves the caller's identity,
// loads the candidate interview and its planner fields, and wires the full
// per-session collaborator graph before handing control to the pump
// goroutines.
func (s *server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	reqCtx := r.Context()
	c := s.container

	mockInterviewID := r.URL.Query().Get("mock_interview_id")
	interviewPlannerID := r.URL.Query().Get("interview_planner_id")

	userID, err := s.resolveUserID(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusUnauthorized)
		return
	}

	candidate, err := c.Store.GetCandidateInterviewByMockAndUser(reqCtx, mockInterviewID, userID)
	if err != nil {
		http.Error(w, "candidate interview not found", http.StatusNotFound)
		return
	}

	planners, err := c.Store.GetPlannerFields(reqCtx, interviewPlannerID)
	if err != nil || len(planners) == 0 {
		http.Error(w, "no planner fields for interview", http.StatusNotFound)
		return
	}

	sessionID := uuid.NewString()
	systemPrompt := buildInitialSystemPrompt(planners[0])

	tr := transport.NewWebSocketTransport(c.Logger)

	// The connection outlives this handler's request context, so the
	// session's background work runs against its own context, cancelled
	// only when the transport closes.
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		<-tr.Closed()
		cancel()
	}()

	output := &llmOutputSink{
		tts:                  c.TTS,
		transport:            tr,
		logger:               c.Logger,
		candidateInterviewID: candidate.ID,
		sessionID:            sessionID,
	}

	runtime, err := c.NewSessionRuntime(mockInterviewID, userID, sessionID, interviewPlannerID, planners, systemPrompt, output, tr)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	runtime.Session.Context().SetCandidateInterviewID(candidate.ID)
	output.transcriptBus = runtime.Session.Transcript()

	sttProvider := c.NewSTT()
	stt, err := sttProvider.Start(ctx)
	if err != nil {
		c.Logger.Error("failed to start speech-to-text stream", "session_id", sessionID, "error", err)
		http.Error(w, "speech provider unavailable", http.StatusBadGateway)
		return
	}

	tr.OnClientConnected(func() {
		runtime.Session.Start(ctx)
	})
	tr.OnClientDisconnected(func() {
		runtime.Session.HandleDisconnect()
		runtime.Stop()
		_ = sttProvider.Close()
	})

	if err := tr.Upgrade(w, r); err != nil {
		c.Logger.Error("websocket upgrade failed", "session_id", sessionID, "error", err)
		return
	}

	go pumpEvents(ctx, runtime.Session.Events(), sessionID, tr)
	go pumpTranscriptAudio(runtime, stt)
	go pumpInbound(ctx, c, runtime, sttProvider, tr)
}

func (s *server) resolveUserID(r *http.Request) (string, error) {
	c := s.container
	token := bearerToken(r)
	id, err := c.Identity.Verify(token)
	switch {
	case err == nil:
		return id.UserID, nil
	case errors.Is(err, identity.ErrAuthDisabled):
		if userID := r.URL.Query().Get("user_id"); userID != "" {
			return userID, nil
		}
		return "", errors.New("user_id query parameter is required when auth is disabled")
	default:
		return "", err
	}
}

func buildInitialSystemPrompt(first interview.PlannerField) string {
	if first.InterviewInstructions != "" {
		return first.InterviewInstructions
	}
	return "You are conducting a live technical interview. Be concise, professional, and attentive."
}

// pumpEvents forwards every SSE envelope published for the session to the
// transport as a JSON frame.
func pumpEvents(ctx context.Context, events *interview.EventBus, sessionID string, tr transport.Transport) {
	ch := events.Subscribe(sessionID)
	for {
		select {
		case <-ctx.Done():
			events.Unsubscribe(sessionID)
			return
		case <-tr.Closed():
			events.Unsubscribe(sessionID)
			return
		case event, ok := <-ch:
			if !ok {
				return
			}
			payload, err := json.Marshal(map[string]any{
				"type": "TaskEvent",
				"data": event.Data.ToWire(),
			})
			if err != nil {
				continue
			}
			_ = tr.SendText(payload)
		}
	}
}

// pumpTranscriptAudio drains finalized speech-to-text frames, publishes them
// to the transcript bus, and feeds them into the LLM context when the gate
// allows user input.
func pumpTranscriptAudio(runtime *container.SessionRuntime, frames <-chan sttprovider.TextFrame) {
	for frame := range frames {
		if !frame.Final || frame.Text == "" {
			continue
		}
		if !runtime.Session.Gate().Allow(interview.FrameUser) {
			continue
		}
		runtime.Session.Transcript().Publish(interview.TopicTranscriptCreated, interview.TranscriptEvent{
			CandidateInterviewID: runtime.Session.Context().CandidateInterviewID,
			SessionID:            runtime.Session.Context().SessionID,
			Sender:               interview.SenderCandidate,
			Message:              frame.Text,
		})
		runtime.LLM.AppendUserMessage(frame.Text)
	}
}

// pumpInbound classifies and dispatches every inbound websocket text frame.
func pumpInbound(ctx context.Context, c *container.Container, runtime *container.SessionRuntime, stt sttprovider.Provider, tr *transport.WebSocketTransport) {
	for raw := range tr.Inbound() {
		var frame clientFrame
		if err := json.Unmarshal(raw, &frame); err != nil {
			c.Logger.Warn("dropping malformed websocket frame", "error", err)
			continue
		}

		switch frame.Type {
		case string(interview.ToolEventCodeContent):
			if !runtime.Session.Gate().Allow(interview.FrameData) {
				continue
			}
			_ = runtime.Code.Receive(ctx, codepipeline.Submission{
				QuestionID:           frame.QuestionID,
				CandidateInterviewID: frame.CandidateInterviewID,
				Content:              frame.Content,
				Language:             frame.Language,
				Timestamp:            frame.Timestamp,
			})
		case string(interview.ToolEventDesignContent):
			if !runtime.Session.Gate().Allow(interview.FrameData) {
				continue
			}
			_ = runtime.Design.Receive(ctx, designpipeline.Submission{
				QuestionID:           frame.QuestionID,
				CandidateInterviewID: frame.CandidateInterviewID,
				Content:              frame.Content,
				Timestamp:            frame.Timestamp,
			})
		case "AudioChunk":
			pcm, err := base64.StdEncoding.DecodeString(frame.Audio)
			if err != nil {
				continue
			}
			if err := stt.PushAudio(pcm); err != nil {
				c.Logger.Warn("failed to push audio to speech-to-text stream", "error", err)
			}
		case "Transition":
			runtime.Session.RequestTransition(ctx)
		default:
			c.Logger.Debug("ignoring unknown frame type", "type", frame.Type)
		}
	}
}

// llmOutputSink adapts streamed LLM text into transcript publication, TTS
// synthesis, and an outbound audio frame on the transport.
type llmOutputSink struct {
	tts                  ttsprovider.Provider
	transport            transport.Transport
	transcriptBus        *interview.TranscriptEventBus
	logger               *slog.Logger
	candidateInterviewID string
	sessionID            string
}

func (o *llmOutputSink) PushText(text string) {
	if o.transcriptBus != nil {
		o.transcriptBus.Publish(interview.TopicTranscriptCreated, interview.TranscriptEvent{
			CandidateInterviewID: o.candidateInterviewID,
			SessionID:            o.sessionID,
			Sender:               interview.SenderInterviewer,
			Message:              text,
		})
	}
	if o.tts == nil {
		return
	}
	audio, err := o.tts.Speak(context.Background(), text, ttsprovider.Options{FilterMarkdown: true})
	if err != nil {
		o.logger.Error("tts synthesis failed", "error", err)
		return
	}
	payload, err := json.Marshal(map[string]any{
		"type":  "AudioChunk",
		"audio": base64.StdEncoding.EncodeToString(audio),
	})
	if err != nil {
		return
	}
	_ = o.transport.SendText(payload)
}
