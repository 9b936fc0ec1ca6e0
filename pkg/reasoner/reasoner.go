package reasoner

import (
	"context"
	"log"
	"sync"

	"github.com/google/uuid"

	"nars-kernel/internal/bag"
	"nars-kernel/internal/budget"
	"nars-kernel/internal/concept"
	"nars-kernel/internal/config"
	"nars-kernel/internal/cycle"
	"nars-kernel/internal/event"
	"nars-kernel/internal/kernelerr"
	"nars-kernel/internal/knowledge"
	"nars-kernel/internal/memory"
	"nars-kernel/internal/metrics"
	"nars-kernel/internal/narsese"
	"nars-kernel/internal/premise"
	"nars-kernel/internal/rule"
	"nars-kernel/internal/stamp"
	"nars-kernel/internal/storage"
	"nars-kernel/internal/task"
	"nars-kernel/internal/term"
	"nars-kernel/internal/truth"
)

// Reasoner is the kernel's façade: every subsystem built in internal/ wired
// together behind the operations spec.md §6 names (input, step, run, stop,
// reset, query) plus the supplemented snapshot/load pair (SPEC_FULL.md §4).
// Grounded on cmd/server/main.go's top-level wiring of storage, modes and
// the UnifiedServer into one object the MCP layer holds a single reference
// to.
type Reasoner struct {
	Terms    *term.Store
	Bus      *event.Bus
	Mem      *memory.Memory
	Executor *rule.Executor
	Source   *premise.Source
	Cyc      *cycle.ReasoningCycle
	Metrics  *metrics.Collector
	Store    storage.Store
	Mirror   knowledge.GraphMirror

	cfg *config.Config

	mu     sync.Mutex
	cancel context.CancelFunc
}

// New assembles a Reasoner from cfg, a persistence backend and an optional
// graph mirror. store and mirror may be storage.NewMemoryStore() and
// knowledge.NoopMirror{} respectively when persistence/mirroring are not
// wanted.
func New(cfg *config.Config, store storage.Store, mirror knowledge.GraphMirror) *Reasoner {
	terms := term.NewStore()
	bus := event.New()

	memCfg := memory.Config{
		Capacity:           cfg.Memory.Capacity,
		ConceptBagCapacity: cfg.Memory.ConceptBagCapacity,
		BeliefBagCapacity:  cfg.Memory.BeliefBagCapacity,
		TaskBagCapacity:    cfg.Memory.TaskBagCapacity,
		TruthK:             cfg.Truth.K,
		FocusPolicy:        forgetPolicyToBagPolicy(cfg.Memory.ForgetPolicy),
	}
	mem := memory.New(terms, bus, memCfg)

	discs := rule.DefaultDiscriminators()
	tree := rule.NewCompiler(discs).Compile(rule.StandardRules(terms))
	exec := rule.NewExecutor(tree, discs, bus)

	src := premise.New(mem, nil)

	cycCfg := cycle.Config{
		MaxDerivationDepth:  cfg.Cycle.MaxDerivationDepth,
		CPUThrottleInterval: cfg.Cycle.CPUThrottleInterval,
		DecayEveryNCycles:   cfg.Cycle.DecayEveryNCycles,
		MaxTasksPerCycle:    cfg.Cycle.MaxTasksPerCycle,
		DecayRate:           cfg.Cycle.DecayRate,
	}
	cyc := cycle.New(mem, src, exec, bus, cycCfg)

	collector := metrics.NewCollector()
	collector.Subscribe(bus, "reasoner")

	if mirror == nil {
		mirror = knowledge.NoopMirror{}
	}
	if store == nil {
		store = storage.NewMemoryStore()
	}

	r := &Reasoner{
		Terms:    terms,
		Bus:      bus,
		Mem:      mem,
		Executor: exec,
		Source:   src,
		Cyc:      cyc,
		Metrics:  collector,
		Store:    store,
		Mirror:   mirror,
		cfg:      cfg,
	}
	r.subscribeMirror()
	return r
}

func forgetPolicyToBagPolicy(p config.ForgetPolicy) bag.Policy {
	switch p {
	case config.ForgetLRU:
		return bag.PolicyLRU
	case config.ForgetFIFO:
		return bag.PolicyFIFO
	case config.ForgetRandom:
		return bag.PolicyRandom
	default:
		return bag.PolicyPriority
	}
}

// subscribeMirror forwards concept-graph mutations to Mirror. Mirror
// failures are logged here and never propagate: a mirror is a best-effort
// external view, never load bearing for a reasoning cycle
// (internal/knowledge.GraphMirror doc).
func (r *Reasoner) subscribeMirror() {
	r.Bus.Subscribe(event.ConceptCreated, "mirror", func(ev event.Event) {
		activation, _ := r.Mem.ActivationOf(ev.Term)
		if err := r.Mirror.MirrorConcept(context.Background(), ev.Term, activation); err != nil {
			log.Printf("reasoner: mirror concept %s: %v", ev.Term, err)
		}
	})
	r.Bus.Subscribe(event.ConceptEvicted, "mirror", func(ev event.Event) {
		if err := r.Mirror.RemoveConcept(context.Background(), ev.Term); err != nil {
			log.Printf("reasoner: mirror remove %s: %v", ev.Term, err)
		}
	})
}

// defaultBudget is the attentional budget assigned to a freshly input
// sentence absent any caller-supplied override (spec.md §6 input()).
var defaultBudget = budget.New(0.8, 0.9, 0.5)

// InputSentence resolves a parsed Narsese sentence into an interned Task
// and ingests it into Memory. This is the `input(narsese_string)` half of
// spec.md §6's input operation once an external parser has produced a
// Sentence; InputTask below is the `input(task)` half.
func (r *Reasoner) InputSentence(s *narsese.Sentence) (*task.Task, error) {
	if s == nil || s.Term == nil {
		return nil, &kernelerr.InputError{Reason: "nil sentence"}
	}
	t, err := resolveTerm(r.Terms, s.Term)
	if err != nil {
		return nil, err
	}

	punct := task.Punctuation(s.Punct)
	tv := resolveTruth(s.Truth)
	if tv == nil && punct == task.Belief {
		return nil, &kernelerr.InputError{Reason: "belief sentence missing truth value"}
	}

	st := stamp.NewInput(r.Cyc.CycleCount())
	tsk := task.New(t, punct, tv, defaultBudget, st)
	return r.InputTask(tsk), nil
}

// InputTask ingests an already-constructed Task directly, bypassing
// Narsese resolution. Used by callers (e.g. an MCP tool handler accepting
// structured input) that already hold a Task.
func (r *Reasoner) InputTask(t *task.Task) *task.Task {
	resolved := r.Mem.Input(t)
	r.Bus.Publish(event.Event{Kind: event.TaskInput, Term: t.Term.String(), Cycle: r.Cyc.CycleCount()})
	return resolved
}

// Step runs exactly one reasoning cycle (spec.md §6 step()).
func (r *Reasoner) Step() {
	r.Cyc.Step()
}

// Run advances cycles until ctx is cancelled or Stop is called (spec.md §6
// run()/stop()). Run blocks; callers typically invoke it in its own
// goroutine.
func (r *Reasoner) Run(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	r.mu.Lock()
	r.cancel = cancel
	r.mu.Unlock()

	r.Cyc.Run(ctx)
}

// Stop cancels a Run started previously on this Reasoner. A no-op if Run
// was never called or has already finished.
func (r *Reasoner) Stop() {
	r.mu.Lock()
	cancel := r.cancel
	r.mu.Unlock()
	if cancel != nil {
		cancel()
	}
}

// Reset drops all concept and task state but keeps the interned term store
// and compiled rule tree, matching spec.md §6's reset() semantics: a fresh
// Memory, the same kernel identity.
func (r *Reasoner) Reset() {
	r.Mem.Reset()
}

// ResolveTerm interns a parsed TermAST, exported so a transport layer (e.g.
// internal/mcpserver) can build a *term.Term for Query without duplicating
// the AST-to-term translation rules.
func (r *Reasoner) ResolveTerm(ast *narsese.TermAST) (*term.Term, error) {
	return resolveTerm(r.Terms, ast)
}

// Query samples the current best-supported belief matching t, the
// synchronous half of spec.md §6's query(term): unlike a `?` sentence
// ingested via InputSentence (answered asynchronously as reasoning
// proceeds), Query inspects present state immediately.
func (r *Reasoner) Query(t *term.Term) (*task.Task, bool) {
	c, ok := r.Mem.ConceptOf(t)
	if !ok {
		return nil, false
	}
	return c.SampleBelief()
}

// Snapshot captures the current kernel state for persistence, per
// SPEC_FULL.md §4's supplemented snapshot/load pair.
func (r *Reasoner) Snapshot() (*storage.Snapshot, error) {
	snap := &storage.Snapshot{Version: storage.CurrentVersion, Cycle: r.Cyc.CycleCount()}

	seen := make(map[string]bool)
	for _, t := range r.Mem.LiveTerms() {
		r.collectTermRecords(t, seen, snap)
	}

	for _, t := range r.Mem.LiveTerms() {
		c, ok := r.Mem.ConceptOf(t)
		if !ok {
			continue
		}
		snap.Concepts = append(snap.Concepts, conceptToRecord(c))
	}

	if err := r.Store.Save(snap); err != nil {
		return nil, err
	}
	return snap, nil
}

func (r *Reasoner) collectTermRecords(t *term.Term, seen map[string]bool, snap *storage.Snapshot) {
	key := t.String()
	if seen[key] {
		return
	}
	seen[key] = true
	snap.Terms = append(snap.Terms, storage.TermRecord{Canonical: key})
	for _, sub := range t.Components() {
		r.collectTermRecords(sub, seen, snap)
	}
}

func conceptToRecord(c *concept.Concept) storage.ConceptRecord {
	rec := storage.ConceptRecord{TermCanonical: c.Term.String(), Activation: c.Activation}
	for _, t := range c.BeliefBag.IterByPriority() {
		rec.Tasks = append(rec.Tasks, taskToRecord(t, true))
	}
	for _, t := range c.TaskBag.IterByPriority() {
		rec.Tasks = append(rec.Tasks, taskToRecord(t, false))
	}
	for _, l := range c.Links {
		rec.Links = append(rec.Links, storage.LinkRecord{
			TargetCanonical: l.Target.String(),
			Outgoing:        l.Kind == concept.Outgoing,
			Weight:          l.Weight,
		})
	}
	return rec
}

func taskToRecord(t *task.Task, isBelief bool) storage.TaskRecord {
	rec := storage.TaskRecord{
		TermCanonical: t.Term.String(),
		Punctuation:   rune(t.Punct),
		Priority:      t.Budget.Priority,
		Durability:    t.Budget.Durability,
		Quality:       t.Budget.Quality,
		OccurrenceAt:  t.Stamp.OccurrenceTime,
		CreatedAt:     t.Stamp.CreationTime,
		IsBelief:      isBelief,
	}
	if t.Truth != nil {
		rec.HasTruth = true
		rec.Freq = t.Truth.Freq
		rec.Conf = t.Truth.Conf
	}
	for _, e := range t.Stamp.Evidence {
		rec.Evidence = append(rec.Evidence, e.String())
	}
	return rec
}

// Load restores state from a Snapshot (typically one returned by
// Store.Load), rebuilding Memory's concept index and re-interning every
// term. A snapshot whose Version differs from storage.CurrentVersion is
// rejected with a *storage.ErrCorruptedState, which wraps
// kernelerr.ErrCorruptedState (spec.md §7), and Memory is left untouched.
func (r *Reasoner) Load(snap *storage.Snapshot) error {
	if snap.Version != storage.CurrentVersion {
		return &storage.ErrCorruptedState{FoundVersion: snap.Version}
	}
	r.Mem.Reset()

	termByCanonical := make(map[string]*term.Term, len(snap.Terms))
	for _, tr := range snap.Terms {
		termByCanonical[tr.Canonical] = r.Terms.InternAtomic(tr.Canonical)
	}

	for _, cr := range snap.Concepts {
		t, ok := termByCanonical[cr.TermCanonical]
		if !ok {
			t = r.Terms.InternAtomic(cr.TermCanonical)
		}
		for _, tr := range cr.Tasks {
			r.Mem.Input(recordToTask(t, tr))
		}
	}
	return nil
}

func recordToTask(t *term.Term, tr storage.TaskRecord) *task.Task {
	b := budget.New(tr.Priority, tr.Durability, tr.Quality)

	evidence := make([]uuid.UUID, 0, len(tr.Evidence))
	for _, e := range tr.Evidence {
		if id, err := uuid.Parse(e); err == nil {
			evidence = append(evidence, id)
		}
	}
	st := stamp.Stamp{Evidence: evidence, OccurrenceTime: tr.OccurrenceAt, CreationTime: tr.CreatedAt}

	var tv *truth.Truth
	if tr.HasTruth {
		tv = &truth.Truth{Freq: tr.Freq, Conf: tr.Conf}
	}
	return task.New(t, task.Punctuation(tr.Punctuation), tv, b, st)
}
