package timeline

import (
	"math"
	"slices"
	"sort"
	"time"
)

const (
	// DefaultEpsilon is the minimum gap kept between a start and its end
	// while dragging.
	DefaultEpsilon = 0.01
	// MinEpsilon is the smallest accepted drag gap; both edges still land
	// on different milliseconds after rounding.
	MinEpsilon = 0.002
	// DefaultGrace is how long a released drag keeps its selection.
	DefaultGrace = 300 * time.Millisecond
)

// Outcome tags what a store call did.
type Outcome int

const (
	OutcomeUnchanged Outcome = iota
	OutcomeRejected
	OutcomeStarted
	OutcomeCompleted
	OutcomeSplit
	OutcomeDeleted
	OutcomeTextSet
	OutcomeDragged
	OutcomeCommitted
	OutcomeLoaded
)

func (o Outcome) String() string {
	switch o {
	case OutcomeRejected:
		return "rejected"
	case OutcomeStarted:
		return "started"
	case OutcomeCompleted:
		return "completed"
	case OutcomeSplit:
		return "split"
	case OutcomeDeleted:
		return "deleted"
	case OutcomeTextSet:
		return "text-set"
	case OutcomeDragged:
		return "dragged"
	case OutcomeCommitted:
		return "committed"
	case OutcomeLoaded:
		return "loaded"
	default:
		return "unchanged"
	}
}

// Result is returned by every mutating call: the tag, the interval it
// touched (zero when none), and the sorted state after the call.
type Result struct {
	Outcome   Outcome
	ID        ID
	Intervals []Interval
}

// Handle selects which edge of an interval a drag moves.
type Handle int

const (
	HandleStart Handle = iota
	HandleEnd
)

func (h Handle) String() string {
	if h == HandleEnd {
		return "end"
	}
	return "start"
}

// Bounds is the window a drag may move a handle within.
type Bounds struct {
	Min float64
	Max float64
}

// Unbounded allows any non-negative time.
func Unbounded() Bounds {
	return Bounds{Min: 0, Max: math.Inf(1)}
}

// Store owns the ordered subtitle intervals. It is single-writer and does
// no locking; callers serialise access.
type Store struct {
	intervals   []Interval
	nextID      ID
	lastCreated ID
	selection   Selection

	epsilon  float64
	duration float64
	grace    time.Duration
}

type Option func(*Store)

func WithEpsilon(eps float64) Option {
	return func(s *Store) {
		if eps >= MinEpsilon {
			s.epsilon = eps
		}
	}
}

// WithDuration sets the video duration used to bound end drags. Zero means
// unknown.
func WithDuration(seconds float64) Option {
	return func(s *Store) {
		s.SetDuration(seconds)
	}
}

func WithGrace(d time.Duration) Option {
	return func(s *Store) {
		if d >= 0 {
			s.grace = d
		}
	}
}

func NewStore(opts ...Option) *Store {
	s := &Store{
		epsilon: DefaultEpsilon,
		grace:   DefaultGrace,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Store) SetDuration(seconds float64) {
	if !validTime(seconds) {
		seconds = 0
	}
	s.duration = seconds
}

func (s *Store) Duration() float64 {
	return s.duration
}

func (s *Store) Epsilon() float64 {
	return s.epsilon
}

// Mark applies a keyboard mark at playback time t. In priority order it
// closes the open interval, splits the closed interval containing t, or
// starts a new open interval.
func (s *Store) Mark(t float64) (Result, error) {
	if !validTime(t) {
		return s.rejected(), ErrInvalidTime
	}

	if i := s.indexOf(s.lastCreated); i >= 0 && !s.intervals[i].Closed() {
		open := s.intervals[i]
		if !spans(open.Start, t) {
			return s.rejected(), invalidTimeOrder(open.Start, t)
		}
		s.intervals[i].End = Seconds(t)
		s.Sort()
		s.selection.Clear()
		return s.result(OutcomeCompleted, open.ID), nil
	}

	for i, iv := range s.intervals {
		if !iv.Contains(t) {
			continue
		}
		originalEnd := *iv.End
		if !spans(iv.Start, t) || !spans(t, originalEnd) {
			return s.rejected(), splitTooShort(iv, t)
		}
		s.intervals[i].End = Seconds(t)

		created := s.newInterval(t, Seconds(originalEnd))
		s.intervals = slices.Insert(s.intervals, i+1, created)
		s.lastCreated = created.ID

		s.Sort()
		s.selection.Clear()
		return s.result(OutcomeSplit, created.ID), nil
	}

	if boundary, ok := s.maxClosedEnd(); ok && t <= boundary {
		return s.rejected(), overlapRejected(boundary)
	}

	created := s.newInterval(t, nil)
	s.intervals = append(s.intervals, created)
	s.lastCreated = created.ID
	s.Sort()
	return s.result(OutcomeStarted, created.ID), nil
}

// Delete removes the interval with the given id. Unknown ids are a no-op.
func (s *Store) Delete(id ID) Result {
	i := s.indexOf(id)
	if i < 0 {
		return s.result(OutcomeUnchanged, 0)
	}
	s.intervals = slices.Delete(s.intervals, i, i+1)
	if active, ok := s.selection.Active(); ok && active == id {
		s.selection.Clear()
	}
	if s.lastCreated == id {
		s.lastCreated = 0
	}
	return s.result(OutcomeDeleted, id)
}

func (s *Store) SetText(id ID, text string) (Result, error) {
	i := s.indexOf(id)
	if i < 0 {
		return s.rejected(), notFound(id)
	}
	s.intervals[i].Text = text
	return s.result(OutcomeTextSet, id), nil
}

// EditDrag moves one handle of an interval to newTime, clamped to bounds
// and to the interval's other edge. The collection is not re-sorted until
// CommitDrag.
func (s *Store) EditDrag(id ID, handle Handle, newTime float64, bounds Bounds) (Result, error) {
	i := s.indexOf(id)
	if i < 0 {
		return s.rejected(), notFound(id)
	}
	if math.IsNaN(newTime) || math.IsInf(newTime, 0) {
		return s.rejected(), ErrInvalidTime
	}

	iv := &s.intervals[i]
	switch handle {
	case HandleStart:
		lo := math.Max(0, bounds.Min)
		hi := bounds.Max
		if iv.End != nil {
			hi = *iv.End - s.epsilon
		}
		// no legal position left: the handle stays where it is
		if hi >= lo {
			iv.Start = clamp(newTime, lo, hi)
		}
	case HandleEnd:
		if iv.End == nil {
			return s.rejected(), ErrEndNotSet
		}
		lo := iv.Start + s.epsilon
		hi := bounds.Max
		if s.duration > 0 {
			hi = math.Min(hi, s.duration)
		}
		if hi >= lo {
			iv.End = Seconds(clamp(newTime, lo, hi))
		}
	}

	s.selection.Begin(id)
	return s.result(OutcomeDragged, id), nil
}

// CommitDrag ends a drag gesture: the collection is re-sorted and the
// selection goes idle once the grace period after now has passed.
func (s *Store) CommitDrag(now time.Time) Result {
	s.Sort()
	id, _ := s.selection.Active()
	s.selection.Release(now.Add(s.grace))
	return s.result(OutcomeCommitted, id)
}

// Select marks an interval as being edited on the timeline, cancelling
// any pending release.
func (s *Store) Select(id ID) error {
	if s.indexOf(id) < 0 {
		return notFound(id)
	}
	s.selection.Begin(id)
	return nil
}

// ExpireSelection clears a released selection whose grace period is over.
func (s *Store) ExpireSelection(now time.Time) bool {
	return s.selection.Expire(now)
}

func (s *Store) Selection() Selection {
	return s.selection
}

// Sort orders intervals by start, keeping insertion order for ties.
// Non-finite starts sort last.
func (s *Store) Sort() {
	sortIntervals(s.intervals)
}

func sortIntervals(ivs []Interval) {
	sort.SliceStable(ivs, func(i, j int) bool {
		a, b := ivs[i].Start, ivs[j].Start
		aOK := !math.IsNaN(a) && !math.IsInf(a, 0)
		bOK := !math.IsNaN(b) && !math.IsInf(b, 0)
		switch {
		case aOK && bOK:
			return a < b
		case aOK:
			return true
		default:
			return false
		}
	})
}

// Intervals returns a sorted copy of the collection.
func (s *Store) Intervals() []Interval {
	out := make([]Interval, len(s.intervals))
	for i, iv := range s.intervals {
		out[i] = iv.clone()
	}
	sortIntervals(out)
	return out
}

// Completed returns the sorted intervals eligible for export.
func (s *Store) Completed() []Interval {
	return CompletedOf(s.Intervals())
}

// CompletedOf filters ivs down to intervals with an end after their start.
func CompletedOf(ivs []Interval) []Interval {
	out := make([]Interval, 0, len(ivs))
	for _, iv := range ivs {
		if iv.Complete() {
			out = append(out, iv)
		}
	}
	return out
}

func (s *Store) Get(id ID) (Interval, bool) {
	i := s.indexOf(id)
	if i < 0 {
		return Interval{}, false
	}
	return s.intervals[i].clone(), true
}

// Open returns the in-progress interval, if there is one.
func (s *Store) Open() (Interval, bool) {
	i := s.indexOf(s.lastCreated)
	if i < 0 || s.intervals[i].Closed() {
		return Interval{}, false
	}
	return s.intervals[i].clone(), true
}

func (s *Store) Len() int {
	return len(s.intervals)
}

// ActiveAt returns the first interval in start order covering now.
func (s *Store) ActiveAt(now float64) (Interval, bool) {
	for _, iv := range s.Intervals() {
		if iv.Covers(now) {
			return iv, true
		}
	}
	return Interval{}, false
}

// Neighbors returns the intervals immediately before and after id in start
// order.
func (s *Store) Neighbors(id ID) (prev, next *Interval) {
	ivs := s.Intervals()
	for i, iv := range ivs {
		if iv.ID != id {
			continue
		}
		if i > 0 {
			p := ivs[i-1]
			prev = &p
		}
		if i+1 < len(ivs) {
			n := ivs[i+1]
			next = &n
		}
		break
	}
	return prev, next
}

// Reset drops every interval. Ids keep counting so none is reused.
func (s *Store) Reset() Result {
	s.intervals = nil
	s.lastCreated = 0
	s.selection.Clear()
	return s.result(OutcomeLoaded, 0)
}

// Load replaces the collection with closed intervals read from elsewhere,
// assigning fresh ids. Open, inverted or overlapping input is rejected and
// leaves the store unchanged.
func (s *Store) Load(ivs []Interval) (Result, error) {
	staged := make([]Interval, 0, len(ivs))
	for _, iv := range ivs {
		if !validTime(iv.Start) {
			return s.rejected(), ErrInvalidTime
		}
		if !iv.Complete() {
			return s.rejected(), invalidTimeOrder(iv.Start, iv.EndOr(iv.Start))
		}
		staged = append(staged, iv.clone())
	}
	sortIntervals(staged)
	for i := 1; i < len(staged); i++ {
		prevEnd := *staged[i-1].End
		if staged[i].Start < prevEnd {
			return s.rejected(), overlapRejected(prevEnd)
		}
	}

	for i := range staged {
		s.nextID++
		staged[i].ID = s.nextID
	}
	s.intervals = staged
	s.lastCreated = 0
	s.selection.Clear()
	return s.result(OutcomeLoaded, 0), nil
}

func (s *Store) newInterval(start float64, end *float64) Interval {
	s.nextID++
	return Interval{ID: s.nextID, Start: start, End: end}
}

func (s *Store) indexOf(id ID) int {
	if id == 0 {
		return -1
	}
	for i, iv := range s.intervals {
		if iv.ID == id {
			return i
		}
	}
	return -1
}

func (s *Store) maxClosedEnd() (float64, bool) {
	found := false
	var maxEnd float64
	for _, iv := range s.intervals {
		if iv.End == nil {
			continue
		}
		if !found || *iv.End > maxEnd {
			maxEnd = *iv.End
			found = true
		}
	}
	return maxEnd, found
}

func clamp(t, lo, hi float64) float64 {
	return math.Min(math.Max(t, lo), hi)
}

func (s *Store) result(outcome Outcome, id ID) Result {
	return Result{Outcome: outcome, ID: id, Intervals: s.Intervals()}
}

func (s *Store) rejected() Result {
	return s.result(OutcomeRejected, 0)
}
