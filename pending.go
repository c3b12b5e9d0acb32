package kaiku

import (
	"errors"
	"fmt"
	"slices"
)

var (
	// ErrInvalidArgument is returned when a caller violates a registration
	// precondition: staging a track that already has an identity, or using a
	// non-leader or uncommitted track as the source of a changed registration.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrCommitFailed is returned by Apply when the pending state can no
	// longer be reconciled with the actual list, e.g. the original of a
	// changed entry has been removed or a channel group is malformed. The
	// actual list is left untouched when this happens.
	ErrCommitFailed = errors.New("commit failed")
)

type (
	// Updater merges authoritative state from the actual track into its
	// pending counterpart, without clobbering the edits the pending track has
	// accumulated. It is called synchronously from Refresh, once per channel,
	// and must not re-enter the PendingTracks it was registered with.
	Updater func(pending, actual Track) error

	// PendingTracks stages deferred additions and replacements on top of a
	// TrackList, so that destructive edits can be previewed, refreshed from
	// the actual project state, and then committed atomically or discarded.
	// It holds a non-owning reference to the list it augments and owns the
	// pending tracks themselves; it must not outlive the list.
	//
	// New entries (RegisterNewTracks) appear in augmented iteration after all
	// actual tracks, in registration order. Changed entries (RegisterChanged)
	// never appear in iteration; they shadow their originals and are found
	// only through ResolvePending.
	//
	// All methods must be called from the single goroutine that owns the
	// project; there is no internal locking.
	PendingTracks struct {
		list    *TrackList
		added   []Track
		changed []*pendingGroup
		index   map[TrackID]*pendingGroup
	}

	// pendingGroup pairs the identity of a committed channel group with its
	// staged replacement.
	pendingGroup struct {
		id      TrackID
		tracks  []Track
		updater Updater
	}
)

// NewPendingTracks returns an empty registry augmenting the given list. The
// project root owns exactly one registry per track list and passes it to
// whichever collaborator needs it.
func NewPendingTracks(list *TrackList) *PendingTracks {
	return &PendingTracks{list: list, index: map[TrackID]*pendingGroup{}}
}

// RegisterNewTracks stages freshly constructed tracks for addition to the
// list. The tracks must have unassigned identities and form well-formed
// channel groups; their relative order is preserved from registration to
// commit, also across multiple calls. The tracks become visible in augmented
// iteration immediately, after all actual tracks, but are not part of the
// actual list until Apply.
func (p *PendingTracks) RegisterNewTracks(tracks []Track) error {
	if len(tracks) == 0 {
		return fmt.Errorf("%w: no tracks given", ErrInvalidArgument)
	}
	for i := 0; i < len(tracks); {
		lead := tracks[i]
		if lead.ID() != 0 {
			return fmt.Errorf("%w: track %q already has identity %d", ErrInvalidArgument, lead.Name(), lead.ID())
		}
		if !lead.IsLeader() || i+lead.Channels() > len(tracks) {
			return fmt.Errorf("%w: tracks do not form whole channel groups", ErrInvalidArgument)
		}
		i += lead.Channels()
	}
	p.added = append(p.added, tracks...)
	return nil
}

// RegisterChanged stages a replacement for the committed channel group led by
// src and returns the pending group's leader. The pending group is a
// duplicate carrying the same identity and channel count as the source, so it
// can transparently shadow it; the caller may accumulate edits on it for a
// deferred commit. Registering the same identity again discards the earlier
// pending group but keeps its Updater if no new one is given.
//
// The updater, if not nil, is invoked by Refresh to merge state from the
// actual group into the pending one.
func (p *PendingTracks) RegisterChanged(updater Updater, src Track) (Track, error) {
	if src == nil || !src.IsLeader() {
		return nil, fmt.Errorf("%w: source track is not a channel group leader", ErrInvalidArgument)
	}
	group, ok := p.list.Group(src.ID())
	if !ok {
		return nil, fmt.Errorf("%w: track %q (id %d) is not in the list", ErrInvalidArgument, src.Name(), src.ID())
	}
	dup := make([]Track, len(group))
	for i, t := range group {
		dup[i] = t.Duplicate()
	}
	if e, ok := p.index[src.ID()]; ok {
		e.tracks = dup
		if updater != nil {
			e.updater = updater
		}
		return dup[0], nil
	}
	e := &pendingGroup{id: src.ID(), tracks: dup, updater: updater}
	p.changed = append(p.changed, e)
	p.index[e.id] = e
	return dup[0], nil
}

// ResolvePending returns the pending replacement registered for the given
// track's identity, or the track itself if there is none. Read-only; safe to
// call on any track.
func (p *PendingTracks) ResolvePending(t Track) Track {
	if e, ok := p.index[t.ID()]; ok && t.ChannelIndex() < len(e.tracks) {
		return e.tracks[t.ChannelIndex()]
	}
	return t
}

// ResolveOriginal is the inverse of ResolvePending: given a pending changed
// track, it returns the corresponding actual track, so that display and
// identity logic can always recover the committed track regardless of which
// version it happens to observe. Any other track is returned unchanged.
func (p *PendingTracks) ResolveOriginal(t Track) Track {
	e, ok := p.index[t.ID()]
	if !ok || !slices.Contains(e.tracks, t) {
		return t
	}
	if group, ok := p.list.Group(t.ID()); ok && t.ChannelIndex() < len(group) {
		return group[t.ChannelIndex()]
	}
	return t
}

// Iterate yields the augmented view of the list: all actual tracks in list
// order, then all staged new tracks in registration order. Changed entries do
// not appear; they are substituted on lookup only, through ResolvePending.
func (p *PendingTracks) Iterate(yield func(Track) bool) {
	for _, t := range p.list.tracks {
		if !yield(t) {
			return
		}
	}
	for _, t := range p.added {
		if !yield(t) {
			return
		}
	}
}

// Refresh invokes the updaters of the changed entries, once per channel,
// pairing pending and actual channels positionally. A failing updater does
// not stop the updaters of other entries from running; all failures are
// joined and returned to the caller, which decides whether to roll back the
// whole staged transaction.
func (p *PendingTracks) Refresh() error {
	var errs []error
	for _, e := range p.changed {
		if e.updater == nil {
			continue
		}
		group, ok := p.list.Group(e.id)
		if !ok || len(group) != len(e.tracks) {
			errs = append(errs, fmt.Errorf("pending track %d has no matching group in the list", e.id))
			continue
		}
		for i, pt := range e.tracks {
			if err := e.updater(pt, group[i]); err != nil {
				errs = append(errs, fmt.Errorf("updating pending track %d: %w", e.id, err))
				break
			}
		}
	}
	return errors.Join(errs...)
}

// Clear discards all pending additions and changes, leaving the actual list
// untouched.
func (p *PendingTracks) Clear() {
	p.added = nil
	p.changed = nil
	p.index = map[TrackID]*pendingGroup{}
}

// Apply commits the pending state into the list: changed groups replace
// their originals (or remove them, when the pending leader is marked erased)
// and new groups are appended with freshly assigned identities, in
// registration order. Returns true if the content of the list really changed,
// so callers can skip recording a no-op undo step.
//
// Strong guarantee: the new list is built and validated on the side and
// swapped in only when everything checks out; on failure the list is exactly
// as it was before the call. The pending state is cleared in either case.
func (p *PendingTracks) Apply() (bool, error) {
	defer p.Clear()
	if len(p.added) == 0 && len(p.changed) == 0 {
		return false, nil
	}
	scratch := slices.Clone(p.list.tracks)
	nextID := p.list.nextID
	for _, e := range p.changed {
		i := -1
		for j, t := range scratch {
			if t.ID() == e.id && t.IsLeader() {
				i = j
				break
			}
		}
		if i < 0 {
			return false, fmt.Errorf("%w: original of pending track %d is no longer in the list", ErrCommitFailed, e.id)
		}
		n := scratch[i].Channels()
		if n != len(e.tracks) {
			return false, fmt.Errorf("%w: pending track %d has %d channels, original has %d", ErrCommitFailed, e.id, len(e.tracks), n)
		}
		if e.tracks[0].Erased() {
			scratch = slices.Delete(scratch, i, i+n)
		} else {
			copy(scratch[i:i+n], e.tracks)
		}
	}
	for i := 0; i < len(p.added); {
		lead := p.added[i]
		nextID++
		group := p.added[i : i+lead.Channels()]
		for _, t := range group {
			t.SetID(nextID)
		}
		scratch = append(scratch, group...)
		i += lead.Channels()
	}
	if err := validateTracks(scratch); err != nil {
		// the caller may still hold the staged tracks; leave them stageable
		for _, t := range p.added {
			t.SetID(0)
		}
		return false, fmt.Errorf("%w: %v", ErrCommitFailed, err)
	}
	p.list.tracks = scratch
	p.list.nextID = nextID
	return true, nil
}
