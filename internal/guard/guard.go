// Package guard is the in-process pipeline a chat or voice edge calls for
// every outgoing user message and at session end.
package guard

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/ppiankov/wellwatch/internal/alert"
	"github.com/ppiankov/wellwatch/internal/audit"
	"github.com/ppiankov/wellwatch/internal/metrics"
	"github.com/ppiankov/wellwatch/internal/resources"
	"github.com/ppiankov/wellwatch/internal/scorer"
	"github.com/ppiankov/wellwatch/internal/session"
)

// Action tells the edge what to do with a message before forwarding it to
// the conversational provider.
type Action string

const (
	ActionForward Action = "forward" // send unchanged
	ActionTag     Action = "tag"     // send, flagged as a crisis signal
	ActionHold    Action = "hold"    // suppress and show crisis resources
)

// Message is one user-authored message.
type Message struct {
	SessionID string `json:"session_id,omitempty"`
	Text      string `json:"text"`
	Locale    string `json:"locale,omitempty"`
}

// Verdict is the result of CheckMessage.
type Verdict struct {
	SessionID   string               `json:"session_id"`
	Action      Action               `json:"action"`
	Assessment  scorer.Assessment    `json:"assessment"`
	Resources   []resources.Resource `json:"resources,omitempty"`
	LexiconHash string               `json:"lexicon_hash,omitempty"`
}

// Summary is the result of a conversation-level assessment.
type Summary struct {
	SessionID   string                        `json:"session_id,omitempty"`
	Assessment  scorer.ConversationAssessment `json:"assessment"`
	Resources   []resources.Resource          `json:"resources,omitempty"`
	Ended       bool                          `json:"ended,omitempty"`
	LexiconHash string                        `json:"lexicon_hash,omitempty"`
}

// AuditSubmitter accepts audit entries without blocking.
type AuditSubmitter interface {
	Submit(entry audit.AuditEntry)
}

// AlertDispatcher fans alert events out to webhooks without blocking.
type AlertDispatcher interface {
	Dispatch(event alert.AlertEvent)
}

// Options wires the guard's collaborators. Every field is optional.
type Options struct {
	Tracker       *session.Tracker
	Audit         AuditSubmitter
	Alerts        AlertDispatcher
	Metrics       *metrics.Collector
	Logger        *slog.Logger
	DefaultLocale string
	LexiconHash   string
}

type scorerState struct {
	scorer *scorer.Scorer
	hash   string
}

// Guard scores messages and fires interventions. Safe for concurrent use.
type Guard struct {
	state         atomic.Pointer[scorerState]
	tracker       *session.Tracker
	audit         AuditSubmitter
	alerts        AlertDispatcher
	metrics       *metrics.Collector
	logger        *slog.Logger
	defaultLocale string
}

// New creates a Guard around an immutable scorer.
func New(s *scorer.Scorer, opts Options) *Guard {
	if s == nil {
		s = scorer.NewDefault()
	}
	if opts.Tracker == nil {
		opts.Tracker = session.NewTracker(0, 0)
	}
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.DiscardHandler)
	}
	if opts.DefaultLocale == "" {
		opts.DefaultLocale = resources.DefaultLocale
	}
	g := &Guard{
		tracker:       opts.Tracker,
		audit:         opts.Audit,
		alerts:        opts.Alerts,
		metrics:       opts.Metrics,
		logger:        opts.Logger,
		defaultLocale: opts.DefaultLocale,
	}
	g.state.Store(&scorerState{scorer: s, hash: opts.LexiconHash})
	return g
}

// ReplaceScorer swaps in a new scorer. Calls already in progress finish
// with the scorer they started with.
func (g *Guard) ReplaceScorer(s *scorer.Scorer, lexiconHash string) {
	g.state.Store(&scorerState{scorer: s, hash: lexiconHash})
	g.logger.Info("scorer replaced", "lexicon_hash", lexiconHash)
}

// Scorer returns the scorer currently in use.
func (g *Guard) Scorer() *scorer.Scorer { return g.state.Load().scorer }

// LexiconHash returns the hash of the lexicon behind the current scorer.
func (g *Guard) LexiconHash() string { return g.state.Load().hash }

// Tracker returns the session tracker.
func (g *Guard) Tracker() *session.Tracker { return g.tracker }

// CheckMessage scores one message, records it in the session window and
// decides whether to forward, tag or hold it. A missing session ID is
// assigned. Audit and alert delivery never delay the verdict.
func (g *Guard) CheckMessage(ctx context.Context, msg Message) Verdict {
	st := g.state.Load()
	a := st.scorer.Analyze(msg.Text)

	sessionID := msg.SessionID
	if sessionID == "" {
		sessionID = session.NewID()
	}
	g.tracker.Record(sessionID, msg.Text)
	g.metrics.SetActiveSessions(g.tracker.Len())
	g.metrics.RecordAssessment(string(a.Tier), a.Score)

	v := Verdict{
		SessionID:   sessionID,
		Action:      decide(a),
		Assessment:  a,
		LexiconHash: st.hash,
	}
	if v.Action == ActionForward {
		return v
	}

	locale := g.locale(msg.Locale)
	v.Resources = resources.Lookup(locale)
	g.intervene(ctx, v, msg.Text, locale)
	return v
}

func decide(a scorer.Assessment) Action {
	switch {
	case a.RequiresIntervention:
		return ActionHold
	case a.CrisisDetected:
		return ActionTag
	default:
		return ActionForward
	}
}

func (g *Guard) intervene(ctx context.Context, v Verdict, text, locale string) {
	g.metrics.RecordIntervention(string(v.Action))
	g.logger.InfoContext(ctx, "intervention",
		"session_id", v.SessionID,
		"action", v.Action,
		"score", v.Assessment.Score,
		"tier", v.Assessment.Tier,
		"categories", v.Assessment.MatchedCategories,
	)

	if g.audit != nil {
		g.audit.Submit(audit.NewEntry(v.SessionID, audit.ActionCrisisResourceView, audit.AuditDetails{
			Score:        v.Assessment.Score,
			Tier:         string(v.Assessment.Tier),
			Categories:   v.Assessment.MatchedCategories,
			Intervention: string(v.Action),
			MessageHash:  audit.MessageDigest(text),
			Locale:       locale,
			LexiconHash:  v.LexiconHash,
		}))
	}

	eventType := alert.EventCrisisDetected
	if v.Action == ActionHold {
		eventType = alert.EventInterventionRequired
	}
	g.dispatch(alert.AlertEvent{
		Type:        eventType,
		SessionID:   v.SessionID,
		Score:       v.Assessment.Score,
		Tier:        string(v.Assessment.Tier),
		Categories:  v.Assessment.MatchedCategories,
		Locale:      locale,
		LexiconHash: v.LexiconHash,
	})
}

// Summarize runs the conversation assessment over a session's window
// without ending it.
func (g *Guard) Summarize(sessionID string) Summary {
	st := g.state.Load()
	return Summary{
		SessionID:   sessionID,
		Assessment:  st.scorer.AnalyzeConversation(g.tracker.Messages(sessionID)),
		LexiconHash: st.hash,
	}
}

// Conversation assesses a caller-supplied list of user messages. When
// intervention is required it escalates like EndSession, without touching
// the session tracker.
func (g *Guard) Conversation(ctx context.Context, sessionID, locale string, messages []string) Summary {
	st := g.state.Load()
	s := Summary{
		SessionID:   sessionID,
		Assessment:  st.scorer.AnalyzeConversation(messages),
		LexiconHash: st.hash,
	}
	g.conclude(ctx, &s, g.locale(locale), false)
	return s
}

// EndSession assesses the session's window, forgets the session and
// records the outcome. An unknown session yields an empty assessment.
func (g *Guard) EndSession(ctx context.Context, sessionID, locale string) Summary {
	st := g.state.Load()
	sess, _ := g.tracker.End(sessionID)
	g.metrics.SetActiveSessions(g.tracker.Len())

	s := Summary{
		SessionID:   sessionID,
		Assessment:  st.scorer.AnalyzeConversation(sess.Messages),
		Ended:       true,
		LexiconHash: st.hash,
	}
	g.conclude(ctx, &s, g.locale(locale), true)
	return s
}

// Sweep ends sessions idle past the tracker TTL. Their windows are
// assessed so an escalation is never lost to expiry.
func (g *Guard) Sweep(ctx context.Context) int {
	expired := g.tracker.Sweep()
	st := g.state.Load()
	for _, sess := range expired {
		s := Summary{
			SessionID:   sess.ID,
			Assessment:  st.scorer.AnalyzeConversation(sess.Messages),
			Ended:       true,
			LexiconHash: st.hash,
		}
		g.conclude(ctx, &s, g.defaultLocale, true)
	}
	g.metrics.SetActiveSessions(g.tracker.Len())
	return len(expired)
}

// RunSweeper calls Sweep every interval until ctx is done.
func (g *Guard) RunSweeper(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := g.Sweep(ctx); n > 0 {
				g.logger.Debug("expired idle sessions", "count", n)
			}
		}
	}
}

func (g *Guard) conclude(ctx context.Context, s *Summary, locale string, ended bool) {
	a := s.Assessment
	g.metrics.RecordConversation(string(a.RiskLevel))

	if a.InterventionRequired {
		s.Resources = resources.Lookup(locale)
	}

	action := ""
	switch {
	case a.InterventionRequired:
		action = audit.ActionConversationEscalation
	case ended:
		action = audit.ActionSessionSummary
	}
	if action != "" && g.audit != nil {
		g.audit.Submit(audit.NewEntry(s.SessionID, action, audit.AuditDetails{
			RiskLevel:   string(a.RiskLevel),
			Categories:  a.TriggeredCategories,
			Messages:    a.Messages,
			Locale:      locale,
			LexiconHash: s.LexiconHash,
		}))
	}

	var eventType string
	switch a.RiskLevel {
	case scorer.RiskCritical:
		eventType = alert.EventConversationCritical
	case scorer.RiskHigh:
		eventType = alert.EventConversationHigh
	default:
		return
	}
	g.logger.InfoContext(ctx, "conversation escalation",
		"session_id", s.SessionID,
		"risk_level", a.RiskLevel,
		"categories", a.TriggeredCategories,
	)
	g.dispatch(alert.AlertEvent{
		Type:        eventType,
		SessionID:   s.SessionID,
		RiskLevel:   string(a.RiskLevel),
		Categories:  a.TriggeredCategories,
		Locale:      locale,
		LexiconHash: s.LexiconHash,
	})
}

func (g *Guard) dispatch(event alert.AlertEvent) {
	if g.alerts == nil {
		return
	}
	event.Timestamp = time.Now().UTC().Format(audit.TimestampFormat)
	g.alerts.Dispatch(event)
	g.metrics.RecordAlert(event.Type)
}

func (g *Guard) locale(locale string) string {
	if locale == "" {
		return g.defaultLocale
	}
	return locale
}
