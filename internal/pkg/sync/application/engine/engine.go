package engine

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	apiport "chatsync/internal/infrastructure/apiclient/port"
	transport "chatsync/internal/infrastructure/transport/port"
	"chatsync/internal/pkg/sync/application/domain"
	"chatsync/internal/pkg/sync/application/state"
	"chatsync/internal/pkg/sync/application/usecase"
)

// Phase is the engine lifecycle state.
type Phase string

const (
	PhaseNotStarted   Phase = "not_started"
	PhaseInitializing Phase = "initializing"
	PhaseReady        Phase = "ready"
	PhaseFailed       Phase = "failed"
	PhaseClosed       Phase = "closed"
)

// Config wires an Engine. API and Stream are the two external collaborators;
// everything else the engine owns itself.
type Config struct {
	Self      domain.User
	API       apiport.ChatAPI
	Stream    transport.Stream
	TypingTTL time.Duration
	Logger    zerolog.Logger
}

// Engine is the client-local synchronization engine: it mirrors
// conversations and message histories, applies optimistic mutations, and
// reconciles server acknowledgements and real-time events through one shared
// set of merge primitives. All state lives in memory.
type Engine struct {
	self     domain.User
	api      apiport.ChatAPI
	stream   transport.Stream
	log      zerolog.Logger
	store    *state.MessageStore
	registry *state.ConversationRegistry
	typing   *state.TypingTracker
	presence *state.PresenceTracker
	retry    *state.RetryQueue
	notifier *state.Notifier
	search   *state.SearchIndex

	sendUC     *usecase.SendMessageUseCase
	editUC     *usecase.EditMessageUseCase
	deleteUC   *usecase.DeleteMessageUseCase
	likeUC     *usecase.ToggleLikeUseCase
	pinUC      *usecase.TogglePinUseCase
	markReadUC *usecase.MarkReadUseCase
	retryUC    *usecase.RetryMessageUseCase
	fetchUC    *usecase.FetchMessagesUseCase
	listUC     *usecase.ListConversationsUseCase
	directUC   *usecase.OpenDirectConversationUseCase

	mu       sync.Mutex
	phase    Phase
	initDone chan struct{}
	initErr  error
	cancel   context.CancelFunc
	wg       sync.WaitGroup
}

// New constructs an engine in the NotStarted phase.
func New(cfg Config) *Engine {
	log := cfg.Logger.With().Str("component", "engine").Logger()

	e := &Engine{
		self:     cfg.Self,
		api:      cfg.API,
		stream:   cfg.Stream,
		log:      log,
		presence: state.NewPresenceTracker(),
		retry:    state.NewRetryQueue(),
		notifier: state.NewNotifier(),
		phase:    PhaseNotStarted,
	}
	e.store = state.NewMessageStore(cfg.Self.ID, cfg.Logger)
	e.registry = state.NewConversationRegistry(cfg.Self.ID, cfg.Logger)
	e.search = state.NewSearchIndex(e.store)
	e.typing = state.NewTypingTracker(cfg.TypingTTL, func(conversationID int64) {
		e.notifier.Publish(state.Change{Kind: state.ChangeTyping, ConversationID: conversationID})
	})

	e.sendUC = usecase.NewSendMessageUseCase(cfg.API, e.store, e.registry, e.retry, e.notifier, cfg.Self)
	e.editUC = usecase.NewEditMessageUseCase(cfg.API, e.store, e.notifier)
	e.deleteUC = usecase.NewDeleteMessageUseCase(cfg.API, e.store, e.notifier, log)
	e.likeUC = usecase.NewToggleLikeUseCase(cfg.API, e.store, e.notifier, cfg.Self)
	e.pinUC = usecase.NewTogglePinUseCase(cfg.API, e.store, e.notifier)
	e.markReadUC = usecase.NewMarkReadUseCase(cfg.API, e.registry, e.notifier, log)
	e.retryUC = usecase.NewRetryMessageUseCase(cfg.API, e.store, e.registry, e.retry, e.notifier)
	e.fetchUC = usecase.NewFetchMessagesUseCase(cfg.API, e.store, e.notifier)
	e.listUC = usecase.NewListConversationsUseCase(cfg.API, e.registry, e.notifier)
	e.directUC = usecase.NewOpenDirectConversationUseCase(cfg.API, e.registry, e.notifier)
	return e
}

// Initialize brings the engine to Ready: it loads the conversation listing
// and starts consuming the event stream. It is idempotent and safe to call
// concurrently; late callers wait for the first caller's outcome. After a
// failure it can be called again.
func (e *Engine) Initialize(ctx context.Context) error {
	e.mu.Lock()
	switch e.phase {
	case PhaseReady:
		e.mu.Unlock()
		return nil
	case PhaseClosed:
		e.mu.Unlock()
		return domain.ErrEngineClosed
	case PhaseInitializing:
		done := e.initDone
		e.mu.Unlock()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-done:
		}
		e.mu.Lock()
		defer e.mu.Unlock()
		return e.initErr
	}

	e.phase = PhaseInitializing
	e.initDone = make(chan struct{})
	e.initErr = nil
	done := e.initDone
	// The run context is created under the lock so Close can always observe
	// the cancel function of an in-flight initialization.
	runCtx, cancel := context.WithCancel(context.Background())
	e.cancel = cancel
	e.mu.Unlock()

	err := e.initialize(ctx, runCtx)

	e.mu.Lock()
	switch {
	case e.phase == PhaseClosed:
		// Close won the race; leave the terminal phase alone.
		if err == nil {
			err = domain.ErrEngineClosed
		}
		e.initErr = err
	case err != nil:
		cancel()
		e.phase = PhaseFailed
		e.initErr = err
	default:
		e.phase = PhaseReady
	}
	close(done)
	e.mu.Unlock()
	return err
}

func (e *Engine) initialize(ctx, runCtx context.Context) error {
	if _, err := e.listUC.Execute(ctx); err != nil {
		return fmt.Errorf("initial conversation sync: %w", err)
	}
	if runCtx.Err() != nil {
		return domain.ErrEngineClosed
	}

	e.wg.Add(2)
	go func() {
		defer e.wg.Done()
		if err := e.stream.Run(runCtx); err != nil && runCtx.Err() == nil {
			e.log.Error().Err(err).Msg("event stream terminated")
		}
	}()
	go func() {
		defer e.wg.Done()
		e.dispatchLoop(runCtx)
	}()

	e.log.Info().Int64("user_id", e.self.ID).Msg("engine ready")
	return nil
}

// Phase returns the current lifecycle phase.
func (e *Engine) Phase() Phase {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.phase
}

// Subscribe registers for change notifications. The cancel function releases
// the subscription.
func (e *Engine) Subscribe() (<-chan state.Change, func()) {
	return e.notifier.Subscribe()
}

// Close stops the stream, cancels typing timers and releases subscribers.
func (e *Engine) Close() error {
	e.mu.Lock()
	if e.phase == PhaseClosed {
		e.mu.Unlock()
		return nil
	}
	e.phase = PhaseClosed
	cancel := e.cancel
	e.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	err := e.stream.Close()
	e.wg.Wait()
	e.typing.Close()
	e.notifier.Close()
	return err
}

func (e *Engine) closed() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.phase == PhaseClosed
}

func (e *Engine) guard() error {
	if e.closed() {
		return domain.ErrEngineClosed
	}
	return nil
}
