package msglog

import (
	stderrs "errors"
	"fmt"
	"sort"
	"strings"

	"github.com/Station-Manager/errors"
)

// ErrUnknownLevel is matched (errors.Is) by every *UnknownLevelError.
var ErrUnknownLevel = stderrs.New("unknown level")

// UnknownLevelError reports a level name or rank that is not registered in a LevelSet.
type UnknownLevelError struct {
	Name string
	Rank int
	// ByRank is true when the lookup was an inverse (rank -> name) lookup.
	ByRank bool
}

func (e *UnknownLevelError) Error() string {
	if e.ByRank {
		return fmt.Sprintf("unknown level rank: %d", e.Rank)
	}
	return fmt.Sprintf("unknown level: %q", e.Name)
}

func (e *UnknownLevelError) Is(target error) bool {
	return target == ErrUnknownLevel
}

// LevelSet is an immutable, ordered set of named severities. Lower ranks are
// more severe. A LevelSet is safe for concurrent use.
type LevelSet struct {
	ranks   map[string]int
	names   map[int]string
	ordered []string
	def     string
}

// DefaultLevels returns the stock level set:
// error=0, warn=1, info=2, verbose=3, debug=4, trace=5, with "info" as default.
func DefaultLevels() *LevelSet {
	ls, err := NewLevelSet(map[string]int{
		LevelError:   0,
		LevelWarn:    1,
		LevelInfo:    2,
		LevelVerbose: 3,
		LevelDebug:   4,
		LevelTrace:   5,
	}, DefaultLevel)
	if err != nil {
		panic(err)
	}
	return ls
}

// NewLevelSet builds a LevelSet from a name -> rank mapping. Names must be
// non-empty and unique, ranks non-negative and unique. When defaultLevel is
// empty, "info" is used if registered, otherwise the least severe level.
func NewLevelSet(levels map[string]int, defaultLevel string) (*LevelSet, error) {
	const op errors.Op = "msglog.NewLevelSet"
	if len(levels) == 0 {
		return nil, errors.New(op).Msg(errMsgNoLevels)
	}

	ls := &LevelSet{
		ranks: make(map[string]int, len(levels)),
		names: make(map[int]string, len(levels)),
	}
	for name, rank := range levels {
		name = strings.TrimSpace(name)
		if name == emptyString {
			return nil, errors.New(op).Msg(errMsgEmptyLevelName)
		}
		if _, dup := ls.ranks[name]; dup {
			return nil, errors.New(op).Msg(errMsgDuplicateName + " (" + name + ")")
		}
		if rank < 0 {
			return nil, errors.New(op).Msg(errMsgNegativeRank + " (" + name + ")")
		}
		if other, ok := ls.names[rank]; ok {
			return nil, errors.New(op).Msg(fmt.Sprintf("%s (%s, %s)", errMsgDuplicateRank, other, name))
		}
		ls.ranks[name] = rank
		ls.names[rank] = name
		ls.ordered = append(ls.ordered, name)
	}
	sort.Slice(ls.ordered, func(i, j int) bool {
		return ls.ranks[ls.ordered[i]] < ls.ranks[ls.ordered[j]]
	})

	switch {
	case defaultLevel != emptyString:
		if _, ok := ls.ranks[defaultLevel]; !ok {
			return nil, errors.New(op).Err(&UnknownLevelError{Name: defaultLevel}).Msg(errMsgBadDefault)
		}
		ls.def = defaultLevel
	case ls.Has(DefaultLevel):
		ls.def = DefaultLevel
	default:
		ls.def = ls.ordered[len(ls.ordered)-1]
	}

	return ls, nil
}

// AsValue resolves a level name to its rank. Integer arguments are returned
// unchanged. Any other argument type, or an unregistered name, yields an
// *UnknownLevelError.
func (ls *LevelSet) AsValue(nameOrRank interface{}) (int, error) {
	switch v := nameOrRank.(type) {
	case string:
		rank, ok := ls.ranks[v]
		if !ok {
			return 0, &UnknownLevelError{Name: v}
		}
		return rank, nil
	case int:
		return v, nil
	case int32:
		return int(v), nil
	case int64:
		return int(v), nil
	case uint:
		return int(v), nil
	default:
		return 0, &UnknownLevelError{Name: fmt.Sprint(nameOrRank)}
	}
}

// AsName is the inverse of AsValue.
func (ls *LevelSet) AsName(rank int) (string, error) {
	name, ok := ls.names[rank]
	if !ok {
		return emptyString, &UnknownLevelError{Rank: rank, ByRank: true}
	}
	return name, nil
}

// MeetsThreshold reports whether a message at candidate rank passes a
// threshold rank: a message is shown when it is at least as severe.
func (ls *LevelSet) MeetsThreshold(candidate, threshold int) bool {
	return candidate <= threshold
}

// Has reports whether name is registered.
func (ls *LevelSet) Has(name string) bool {
	_, ok := ls.ranks[name]
	return ok
}

// Default returns the default level name.
func (ls *LevelSet) Default() string {
	return ls.def
}

// Names returns the level names ordered from most to least severe.
func (ls *LevelSet) Names() []string {
	out := make([]string, len(ls.ordered))
	copy(out, ls.ordered)
	return out
}

// Len returns the number of registered levels.
func (ls *LevelSet) Len() int {
	return len(ls.ordered)
}

func (ls *LevelSet) asMap() map[string]int {
	out := make(map[string]int, len(ls.ranks))
	for k, v := range ls.ranks {
		out[k] = v
	}
	return out
}
