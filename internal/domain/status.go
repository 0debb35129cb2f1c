package domain

type LostStatus string

const (
	LostReported  LostStatus = "Reported"
	LostFound     LostStatus = "Found"
	LostMatched   LostStatus = "Matched"
	LostClaimed   LostStatus = "Claimed"
	LostUnclaimed LostStatus = "Unclaimed"
	LostArchived  LostStatus = "Archived"
)

var LostStatuses = []LostStatus{LostReported, LostFound, LostMatched, LostClaimed, LostUnclaimed, LostArchived}

// 失物报案的合法迁移表；归档另由 Terminal 判断
var lostTransitions = map[LostStatus][]LostStatus{
	LostReported:  {LostFound, LostMatched, LostArchived},
	LostFound:     {LostMatched, LostArchived},
	LostMatched:   {LostReported, LostClaimed, LostUnclaimed, LostArchived},
	LostUnclaimed: {LostArchived},
}

func (s LostStatus) Valid() bool {
	for _, v := range LostStatuses {
		if v == s {
			return true
		}
	}
	return false
}

func (s LostStatus) Terminal() bool { return s == LostClaimed || s == LostArchived }

func (s LostStatus) Active() bool { return s.Valid() && !s.Terminal() }

func (s LostStatus) Deletable() bool { return s == LostReported || s == LostUnclaimed }

func (s LostStatus) Matchable() bool { return s == LostReported || s == LostFound }

func (s LostStatus) CanTransition(to LostStatus) bool { return contains(lostTransitions[s], to) }

type FoundStatus string

const (
	FoundFound     FoundStatus = "Found"
	FoundMatched   FoundStatus = "Matched"
	FoundClaimed   FoundStatus = "Claimed"
	FoundUnclaimed FoundStatus = "Unclaimed"
	FoundArchived  FoundStatus = "Archived"
)

var FoundStatuses = []FoundStatus{FoundFound, FoundMatched, FoundClaimed, FoundUnclaimed, FoundArchived}

var foundTransitions = map[FoundStatus][]FoundStatus{
	FoundFound:     {FoundMatched, FoundUnclaimed},
	FoundMatched:   {FoundFound, FoundClaimed, FoundUnclaimed},
	FoundClaimed:   {FoundArchived},
	FoundUnclaimed: {FoundArchived},
}

func (s FoundStatus) Valid() bool {
	for _, v := range FoundStatuses {
		if v == s {
			return true
		}
	}
	return false
}

func (s FoundStatus) Archivable() bool { return s == FoundClaimed || s == FoundUnclaimed }

func (s FoundStatus) CanTransition(to FoundStatus) bool { return contains(foundTransitions[s], to) }

func contains[T comparable](list []T, v T) bool {
	for _, x := range list {
		if x == v {
			return true
		}
	}
	return false
}

// LostTransition 校验失物报案迁移，失败返回 ErrInvalidTransition
func LostTransition(caseNumber string, from, to LostStatus) error {
	if from.CanTransition(to) {
		return nil
	}
	return &StateError{
		Kind: ErrInvalidTransition, Entity: "lost item", ID: caseNumber,
		Status: string(from), Detail: "cannot move to " + string(to),
	}
}

// FoundTransition 校验招领物品迁移
func FoundTransition(id string, from, to FoundStatus) error {
	if from.CanTransition(to) {
		return nil
	}
	return &StateError{
		Kind: ErrInvalidTransition, Entity: "found item", ID: id,
		Status: string(from), Detail: "cannot move to " + string(to),
	}
}
