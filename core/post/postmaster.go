package post

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
	"sync"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

// OnPanic is invoked when a registered agent's task panics. The default
// implementation logs and lets the task end; the mailbox stays intact.
type OnPanic func(recovered any, stack []byte, addr string)

// Options configures a Postmaster. Zero values take the documented defaults.
type Options[A comparable, P any] struct {
	// Addresses is the closed address set. Required, non-empty, no
	// duplicates. The mailbox table is sized to exactly this set and its
	// shape never changes afterwards.
	Addresses []A

	// MailboxSize is the per-address queue capacity K. Default 16.
	MailboxSize int

	// MaxTasks bounds the concurrent task pool shared by agent loops and
	// delayed-message timers. Default 64.
	MaxTasks int

	// ID names this runtime instance in logs. Default "pm-<nanoid>".
	ID string

	Context context.Context
	Logger  *slog.Logger
	Timer   Timer
	Metrics Metrics
	OnPanic OnPanic

	// OnDeliveryError is called from a timer task when a delayed message's
	// send attempt fails after its delay has elapsed. The message is lost at
	// that point; the default implementation logs at error level.
	OnDeliveryError func(err error, dest A, msg Message[A, P])
}

// Postmaster owns the address→mailbox table, the registration records and
// the bounded task pool. It is the single handle through which every task
// sends and through which agents are registered. Construct one with [New];
// the table's shape is immutable from then on, only mailbox contents mutate.
type Postmaster[A comparable, P any] struct {
	id      string
	ctx     context.Context
	cancel  context.CancelFunc
	log     *slog.Logger
	timer   Timer
	metrics Metrics
	pool    *taskPool

	onPanic         OnPanic
	onDeliveryError func(err error, dest A, msg Message[A, P])

	// immutable after New
	mailboxes map[A]*mailbox[A, P]

	mu     sync.Mutex
	agents map[A]string // address -> registration id

	shutdownOnce sync.Once
	done         chan struct{}
}

// New builds the runtime: one bounded mailbox per declared address, no
// registrations. It must complete before any send or registration.
func New[A comparable, P any](opts Options[A, P]) (*Postmaster[A, P], error) {
	if len(opts.Addresses) == 0 {
		return nil, errors.New("post: at least one address is required")
	}
	if opts.MailboxSize <= 0 {
		opts.MailboxSize = 16
	}
	if opts.MaxTasks <= 0 {
		opts.MaxTasks = 64
	}
	if opts.ID == "" {
		opts.ID = fmt.Sprintf("pm-%s", gonanoid.Must(6))
	}
	if opts.Context == nil {
		opts.Context = context.Background()
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Timer == nil {
		opts.Timer = WallTimer()
	}
	if opts.Metrics == nil {
		opts.Metrics = NopMetrics()
	}

	log := opts.Logger.With(slog.String("postmaster", opts.ID))

	if opts.OnPanic == nil {
		opts.OnPanic = func(recovered any, stack []byte, addr string) {
			log.Error("agent panicked",
				slog.String("agent", addr),
				slog.Any("recovered", recovered),
				slog.String("stack", string(stack)),
			)
		}
	}

	ctx, cancel := context.WithCancel(opts.Context)

	pm := &Postmaster[A, P]{
		id:              opts.ID,
		ctx:             ctx,
		cancel:          cancel,
		log:             log,
		timer:           opts.Timer,
		metrics:         opts.Metrics,
		pool:            newTaskPool(ctx, log, opts.MaxTasks, opts.Metrics),
		onPanic:         opts.OnPanic,
		onDeliveryError: opts.OnDeliveryError,
		mailboxes:       make(map[A]*mailbox[A, P], len(opts.Addresses)),
		agents:          make(map[A]string, len(opts.Addresses)),
		done:            make(chan struct{}),
	}

	for _, addr := range opts.Addresses {
		if _, dup := pm.mailboxes[addr]; dup {
			cancel()
			return nil, fmt.Errorf("post: duplicate address %v", addr)
		}
		pm.mailboxes[addr] = newMailbox[A, P](addr, opts.MailboxSize)
	}

	if pm.onDeliveryError == nil {
		pm.onDeliveryError = func(err error, dest A, msg Message[A, P]) {
			log.Error("delayed message delivery failed",
				slog.String("dest", addrLabel(dest)),
				slog.String("source", addrLabel(msg.Source)),
				slog.Any("error", err),
			)
		}
	}

	log.Debug("postmaster created",
		slog.Int("addresses", len(pm.mailboxes)),
		slog.Int("mailbox_size", opts.MailboxSize),
		slog.Int("max_tasks", opts.MaxTasks),
	)
	return pm, nil
}

// ID returns the runtime instance name used in logs.
func (pm *Postmaster[A, P]) ID() string { return pm.id }

// Register binds addr to agent: Create runs synchronously, then a task from
// the bounded pool executes Run holding the mailbox's consumer end.
//
// Fails with [ErrAddressAlreadyTaken] if addr has a live registration, with
// [ErrTaskPoolExhausted] if no task slot is free, and with [ErrNoRecipient]
// if addr was not declared at construction. On failure the mailbox and any
// prior registration are untouched.
func (pm *Postmaster[A, P]) Register(addr A, agent Agent[A, P], cfg any) error {
	pm.mu.Lock()
	defer pm.mu.Unlock()
	return pm.register(addr, agent, cfg)
}

// TryRegister is Register with a non-blocking registry lock acquisition.
// Fails with [ErrTryLockFailed] when another registration is in progress.
func (pm *Postmaster[A, P]) TryRegister(addr A, agent Agent[A, P], cfg any) error {
	if !pm.mu.TryLock() {
		return fmt.Errorf("register %v: %w", addr, ErrTryLockFailed)
	}
	defer pm.mu.Unlock()
	return pm.register(addr, agent, cfg)
}

func (pm *Postmaster[A, P]) register(addr A, agent Agent[A, P], cfg any) error {
	mb, ok := pm.mailboxes[addr]
	if !ok {
		return fmt.Errorf("register %v: %w", addr, ErrNoRecipient)
	}
	if _, taken := pm.agents[addr]; taken {
		return fmt.Errorf("register %v: %w", addr, ErrAddressAlreadyTaken)
	}

	if err := agent.Create(addr, cfg); err != nil {
		return fmt.Errorf("create agent for %v: %w", addr, err)
	}

	inbox := &Inbox[A, P]{
		addr:    addr,
		mb:      mb,
		done:    pm.ctx.Done(),
		metrics: pm.metrics,
	}

	label := mb.label
	if err := pm.pool.Spawn(func() {
		defer func() {
			if r := recover(); r != nil {
				pm.metrics.AgentPanic(label)
				pm.onPanic(r, debug.Stack(), label)
			}
		}()
		agent.Run(pm.ctx, inbox)
	}); err != nil {
		return fmt.Errorf("spawn agent task for %v: %w", addr, err)
	}

	id := gonanoid.Must(8)
	pm.agents[addr] = id
	pm.log.Debug("agent registered",
		slog.String("agent", label),
		slog.String("registration", id),
	)
	return nil
}

// Shutdown tears the runtime down: every blocked Receive returns
// [ErrShutdown], in-flight delayed timers are abandoned, and Shutdown
// returns once all tasks have ended. Idempotent.
func (pm *Postmaster[A, P]) Shutdown() {
	pm.shutdownOnce.Do(func() {
		pm.log.Debug("shutting down")
		pm.cancel()
		pm.pool.Wait()
		close(pm.done)
	})
	<-pm.done
}

// Done is closed once Shutdown completes.
func (pm *Postmaster[A, P]) Done() <-chan struct{} { return pm.done }
