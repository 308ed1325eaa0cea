package olap

import (
	"strings"

	"github.com/hotspot-olap/internal/domain"
	"github.com/hotspot-olap/internal/pkg/errors"
)

// SlotStatus - состояние одного селектора времени
type SlotStatus string

const (
	SlotEmpty   SlotStatus = "empty"
	SlotLoading SlotStatus = "loading"
	SlotReady   SlotStatus = "ready"
	SlotError   SlotStatus = "error"
)

// Slot - один уровень каскадного фильтра. Value "" при Status ready означает
// явный выбор "все значения".
type Slot struct {
	Level   domain.TimeLevel    `json:"level"`
	Status  SlotStatus          `json:"status"`
	Value   string              `json:"value"`
	Options []domain.TimeOption `json:"options,omitempty"`
	Error   string              `json:"error,omitempty"`

	token uint64
}

// FetchRequest - запрос вариантов для слота; Token защищает от устаревших ответов
type FetchRequest struct {
	Level domain.TimeLevel
	Token uint64
	Query domain.QuerySpec
}

// TimeFilter is the cascading time selector. It is not safe for concurrent
// use; the owner serializes calls (see usecase.ExplorerUseCase).
type TimeFilter struct {
	scope []string
	slots [domain.TimeLevelCount]Slot
	seq   uint64
}

// NewTimeFilter creates the selector for a location scope. Values from
// initial are kept up to the first gap; their option lists load on Open.
func NewTimeFilter(scope []string, initial domain.TimeFilterState) *TimeFilter {
	f := &TimeFilter{scope: append([]string(nil), scope...)}
	for _, l := range domain.TimeLevels() {
		f.slots[l] = Slot{Level: l, Status: SlotEmpty}
	}
	for _, l := range domain.TimeLevels() {
		v := strings.TrimSpace(initial.Get(l))
		if v == "" || !l.Legal(v) {
			break
		}
		f.slots[l].Value = l.Canonical(v)
	}
	return f
}

// Scope returns the location path the options are restricted to.
func (f *TimeFilter) Scope() []string {
	return append([]string(nil), f.scope...)
}

// Slots returns a copy of all five slots, coarsest first.
func (f *TimeFilter) Slots() []Slot {
	out := make([]Slot, len(f.slots))
	for i, s := range f.slots {
		s.Options = append([]domain.TimeOption(nil), s.Options...)
		out[i] = s
	}
	return out
}

// Slot returns a copy of one slot.
func (f *TimeFilter) Slot(level domain.TimeLevel) Slot {
	if !level.Valid() {
		return Slot{}
	}
	s := f.slots[level]
	s.Options = append([]domain.TimeOption(nil), s.Options...)
	return s
}

// State returns the selected values up to the first empty slot.
func (f *TimeFilter) State() domain.TimeFilterState {
	var st domain.TimeFilterState
	for _, l := range domain.TimeLevels() {
		v := f.slots[l].Value
		if v == "" {
			break
		}
		st = st.With(l, v)
	}
	return st
}

// SetSlot stores value in the slot and resets every finer slot in the same
// step. A non-empty value below day starts loading the next slot and the
// returned request must be executed and passed back to Resolve. Any value,
// "show all" included, needs the coarser slot set; "show all" on a slot never
// loaded marks it ready with no options.
func (f *TimeFilter) SetSlot(level domain.TimeLevel, value string) (*FetchRequest, error) {
	if !level.Valid() {
		return nil, errors.ErrInvalidHierarchyRequest.WithMessage("unknown time level %d", int(level))
	}
	value = strings.TrimSpace(value)

	if parent, ok := level.Parent(); ok && f.slots[parent].Value == "" {
		return nil, errors.ErrValidation.WithMessage("pilih %s terlebih dahulu", parent.Key())
	}
	if value != "" {
		canonical, err := f.accept(level, value)
		if err != nil {
			return nil, err
		}
		value = canonical
	}

	f.slots[level].Value = value
	// явный выбор "все" на незагруженном слоте
	if value == "" && f.slots[level].Status == SlotEmpty {
		f.slots[level].Status = SlotReady
	}
	for l := level + 1; l.Valid(); l++ {
		f.reset(l)
	}

	next, ok := level.Next()
	if value == "" || !ok {
		return nil, nil
	}
	return f.startFetch(next)
}

// Open reports what opening the slot's dropdown requires. A populated or
// in-flight slot needs nothing; an empty one is fetched only when it is the
// year slot or its parent has a value.
func (f *TimeFilter) Open(level domain.TimeLevel) (*FetchRequest, error) {
	if !level.Valid() {
		return nil, errors.ErrInvalidHierarchyRequest.WithMessage("unknown time level %d", int(level))
	}
	s := f.slots[level]
	if s.Status == SlotLoading || (s.Status == SlotReady && len(s.Options) > 0) {
		return nil, nil
	}
	if parent, ok := level.Parent(); ok && f.slots[parent].Value == "" {
		return nil, nil
	}
	return f.startFetch(level)
}

// Resolve applies a fetch result. It returns false and changes nothing when
// the request is stale: the slot was reset or refetched after it was issued.
func (f *TimeFilter) Resolve(req *FetchRequest, options []domain.TimeOption, fetchErr error) bool {
	if req == nil || !req.Level.Valid() {
		return false
	}
	s := &f.slots[req.Level]
	if s.token != req.Token || s.Status != SlotLoading {
		return false
	}

	if fetchErr != nil {
		f.fail(req.Level, fetchErr.Error())
		return true
	}

	legal := FilterTimeOptions(req.Level, options)
	if len(legal) == 0 {
		f.fail(req.Level, "tidak ada data "+req.Level.Key())
		return true
	}

	s.Status = SlotReady
	s.Options = legal
	s.Error = ""
	if s.Value != "" && !hasOption(legal, s.Value) {
		s.Value = ""
		for l := req.Level + 1; l.Valid(); l++ {
			f.reset(l)
		}
	}
	return true
}

// Submit returns the chosen state. Year is mandatory.
func (f *TimeFilter) Submit() (domain.TimeFilterState, error) {
	if f.slots[domain.TimeYear].Value == "" {
		return domain.TimeFilterState{}, errors.ErrYearRequired
	}
	return f.State(), nil
}

// FilterTimeOptions keeps the options legal for the level, canonicalized and
// without duplicates. Labels default to the value.
func FilterTimeOptions(level domain.TimeLevel, options []domain.TimeOption) []domain.TimeOption {
	out := make([]domain.TimeOption, 0, len(options))
	seen := make(map[string]struct{}, len(options))
	for _, o := range options {
		if !level.Legal(o.Value) {
			continue
		}
		v := level.Canonical(o.Value)
		if _, dup := seen[v]; dup {
			continue
		}
		seen[v] = struct{}{}
		label := strings.TrimSpace(o.Label)
		if label == "" {
			label = v
		}
		out = append(out, domain.TimeOption{Value: v, Label: label})
	}
	return out
}

func (f *TimeFilter) accept(level domain.TimeLevel, value string) (string, error) {
	if !level.Legal(value) {
		return "", errors.ErrValidation.WithMessage("nilai %q tidak valid untuk %s", value, level.Key())
	}
	canonical := level.Canonical(value)
	s := f.slots[level]
	if s.Status == SlotReady && len(s.Options) > 0 && !hasOption(s.Options, canonical) {
		return "", errors.ErrValidation.WithMessage("nilai %q tidak tersedia untuk %s", value, level.Key())
	}
	return canonical, nil
}

func (f *TimeFilter) startFetch(level domain.TimeLevel) (*FetchRequest, error) {
	q, err := BuildTimeOptionsQuery(level, f.scope, f.State())
	if err != nil {
		return nil, err
	}
	f.seq++
	s := &f.slots[level]
	s.Status = SlotLoading
	s.Options = nil
	s.Error = ""
	s.token = f.seq
	return &FetchRequest{Level: level, Token: f.seq, Query: q}, nil
}

// reset empties a slot and invalidates any in-flight fetch for it.
func (f *TimeFilter) reset(level domain.TimeLevel) {
	f.seq++
	f.slots[level] = Slot{Level: level, Status: SlotEmpty, token: f.seq}
}

func (f *TimeFilter) fail(level domain.TimeLevel, msg string) {
	s := &f.slots[level]
	s.Status = SlotError
	s.Options = nil
	s.Value = ""
	s.Error = msg
	for l := level + 1; l.Valid(); l++ {
		f.reset(l)
	}
}

func hasOption(options []domain.TimeOption, v string) bool {
	for _, o := range options {
		if strings.EqualFold(o.Value, v) {
			return true
		}
	}
	return false
}
