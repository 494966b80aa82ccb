package service

import (
	"context"
	"log/slog"
	"sort"
	"sync"

	"github.com/benbjohnson/clock"

	"github.com/reelistapp/reelist-server/internal/config"
	"github.com/reelistapp/reelist-server/internal/domain"
	"github.com/reelistapp/reelist-server/internal/errors"
	"github.com/reelistapp/reelist-server/internal/gesture"
	"github.com/reelistapp/reelist-server/internal/id"
	"github.com/reelistapp/reelist-server/internal/resolve"
	"github.com/reelistapp/reelist-server/internal/session"
)

// EditorService owns the open edit sessions. Each session wraps a draft of
// one catalog, a gesture classifier for its genre grid, and the input
// sources negotiated from the client's capabilities.
type EditorService struct {
	catalogs *CatalogService
	lookup   resolve.Lookup
	cfg      config.EditorConfig
	clk      clock.Clock
	logger   *slog.Logger

	mu   sync.Mutex
	open map[string]*openSession
}

type openSession struct {
	id      string
	session *session.Session
	sources map[gesture.Modality]gesture.PressSource
}

// NewEditorService creates a new editor service. A nil clk uses the wall
// clock.
func NewEditorService(catalogs *CatalogService, lookup resolve.Lookup, cfg config.EditorConfig, clk clock.Clock, logger *slog.Logger) *EditorService {
	if clk == nil {
		clk = clock.New()
	}
	return &EditorService{
		catalogs: catalogs,
		lookup:   lookup,
		cfg:      cfg,
		clk:      clk,
		logger:   logger,
		open:     make(map[string]*openSession),
	}
}

// Open loads a catalog and starts an edit session for it. The capabilities
// decide which press sources the session accepts.
func (s *EditorService) Open(ctx context.Context, catalogID string, caps gesture.Capabilities) (string, error) {
	cat, err := s.catalogs.Get(ctx, catalogID)
	if err != nil {
		return "", err
	}

	sessionID, err := id.Generate("sess")
	if err != nil {
		return "", err
	}

	sess := session.New(s.catalogs, s.lookup, session.Config{
		Window: s.cfg.DebounceWindow,
	}, s.clk, s.logger)

	classifier := gesture.NewClassifier(gesture.Config{
		HoldThreshold: s.cfg.HoldThreshold,
		MoveThreshold: s.cfg.MoveThreshold,
	}, s.clk, sess.OnGesture)

	sources := make(map[gesture.Modality]gesture.PressSource)
	for _, src := range gesture.Attach(caps, classifier) {
		sources[src.Modality()] = src
	}

	sess.Seed(ctx, *cat, nil)

	s.mu.Lock()
	s.open[sessionID] = &openSession{
		id:      sessionID,
		session: sess,
		sources: sources,
	}
	s.mu.Unlock()

	s.logger.Info("edit session opened", "session_id", sessionID, "catalog_id", catalogID)
	return sessionID, nil
}

// Session returns the live session for an id.
func (s *EditorService) Session(sessionID string) (*session.Session, error) {
	os, err := s.get(sessionID)
	if err != nil {
		return nil, err
	}
	return os.session, nil
}

// Modalities returns the press modalities a session negotiated at open time.
func (s *EditorService) Modalities(sessionID string) ([]gesture.Modality, error) {
	os, err := s.get(sessionID)
	if err != nil {
		return nil, err
	}
	out := make([]gesture.Modality, 0, len(os.sources))
	for m := range os.sources {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out, nil
}

// PressPhase is one step of a press delivered by a client.
type PressPhase string

// Press phases.
const (
	PhaseStart  PressPhase = "start"
	PhaseMove   PressPhase = "move"
	PhaseEnd    PressPhase = "end"
	PhaseCancel PressPhase = "cancel"
)

// PressInput is a raw input event on a genre item.
type PressInput struct {
	Modality gesture.Modality `json:"modality"`
	Phase    PressPhase       `json:"phase"`
	ItemID   string           `json:"item_id"`
	X        float64          `json:"x"`
	Y        float64          `json:"y"`
}

// Press routes a raw press event into the session's classifier. Events for
// modalities the session did not negotiate are rejected.
func (s *EditorService) Press(sessionID string, in PressInput) error {
	os, err := s.get(sessionID)
	if err != nil {
		return err
	}

	src, ok := os.sources[in.Modality]
	if !ok {
		return errors.Validationf("modality %s not accepted by this session", in.Modality)
	}

	switch src := src.(type) {
	case *gesture.PointerSource:
		switch in.Phase {
		case PhaseStart:
			src.Down(in.ItemID, in.X, in.Y)
		case PhaseMove:
			src.Move(in.ItemID, in.X, in.Y)
		case PhaseEnd:
			src.Up(in.ItemID)
		case PhaseCancel:
			src.Cancel(in.ItemID)
		default:
			return errors.Validationf("unknown press phase %q", in.Phase)
		}
	case *gesture.TouchSource:
		switch in.Phase {
		case PhaseStart:
			src.Start(in.ItemID, in.X, in.Y)
		case PhaseMove:
			src.Move(in.ItemID, in.X, in.Y)
		case PhaseEnd:
			src.End(in.ItemID)
		case PhaseCancel:
			src.Cancel(in.ItemID)
		default:
			return errors.Validationf("unknown press phase %q", in.Phase)
		}
	case *gesture.MouseSource:
		switch in.Phase {
		case PhaseStart:
			src.Down(in.ItemID, in.X, in.Y)
		case PhaseMove:
			src.Move(in.ItemID, in.X, in.Y)
		case PhaseEnd:
			src.Up(in.ItemID)
		case PhaseCancel:
			// Mouse input has no cancel signal.
		default:
			return errors.Validationf("unknown press phase %q", in.Phase)
		}
	default:
		return errors.Internalf("unhandled press source %T", src)
	}
	return nil
}

// Save flushes a session's draft to the catalog store.
func (s *EditorService) Save(ctx context.Context, sessionID string) (domain.Catalog, error) {
	os, err := s.get(sessionID)
	if err != nil {
		return domain.Catalog{}, err
	}
	return os.session.Save(ctx)
}

// Close saves nothing and tears the session down. Pending pushes are
// discarded; callers wanting the draft kept call Save first.
func (s *EditorService) Close(sessionID string) error {
	s.mu.Lock()
	os, ok := s.open[sessionID]
	delete(s.open, sessionID)
	s.mu.Unlock()

	if !ok {
		return errors.NotFoundf("session %s not found", sessionID)
	}
	os.session.Close()
	s.logger.Info("edit session closed", "session_id", sessionID)
	return nil
}

// Shutdown closes every open session.
func (s *EditorService) Shutdown() {
	s.mu.Lock()
	open := s.open
	s.open = make(map[string]*openSession)
	s.mu.Unlock()

	for _, os := range open {
		os.session.Close()
	}
	if len(open) > 0 {
		s.logger.Info("edit sessions discarded on shutdown", "count", len(open))
	}
}

func (s *EditorService) get(sessionID string) (*openSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	os, ok := s.open[sessionID]
	if !ok {
		return nil, errors.NotFoundf("session %s not found", sessionID)
	}
	return os, nil
}
