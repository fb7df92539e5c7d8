// Package alignment turns frame-level state paths into phone-level
// segments with durations.
package alignment

// TransitionInfo maps a frame-level state id to its phone and its
// intra-phone state class. The compiled alignment graph satisfies it.
type TransitionInfo interface {
	PhoneOf(state int) int
	StateClassOf(state int) int
}

// PhoneLabeler resolves phone ids to labels. The phone symbol table
// satisfies it.
type PhoneLabeler interface {
	Phone(id int) (string, bool)
}

// StateSpan is a maximal run of frames sharing one intra-phone state class.
type StateSpan struct {
	Class  int
	Frames int
}

// PhoneSegment is a maximal run of frames sharing one phone, with the
// state-class spans inside it in order.
type PhoneSegment struct {
	PhoneID int
	Phone   string
	Frames  int
	Spans   []StateSpan
}

// Extract walks the state path once and groups maximal contiguous runs of
// the same phone into segments; within each segment, contiguous frames of
// the same state class form one span. The segments partition the input
// exactly: every frame belongs to one segment and one span, in order, with
// no merging across non-adjacent runs.
func Extract(statePath []int, info TransitionInfo, phones PhoneLabeler) []PhoneSegment {
	if len(statePath) == 0 {
		return nil
	}

	var segs []PhoneSegment
	cur := newSegment(statePath[0], info, phones)
	for _, state := range statePath[1:] {
		phoneID := info.PhoneOf(state)
		class := info.StateClassOf(state)
		if phoneID != cur.PhoneID {
			segs = append(segs, cur)
			cur = newSegment(state, info, phones)
			continue
		}
		cur.Frames++
		last := &cur.Spans[len(cur.Spans)-1]
		if last.Class == class {
			last.Frames++
		} else {
			cur.Spans = append(cur.Spans, StateSpan{Class: class, Frames: 1})
		}
	}
	segs = append(segs, cur)
	return segs
}

func newSegment(state int, info TransitionInfo, phones PhoneLabeler) PhoneSegment {
	phoneID := info.PhoneOf(state)
	label, _ := phones.Phone(phoneID)
	return PhoneSegment{
		PhoneID: phoneID,
		Phone:   label,
		Frames:  1,
		Spans:   []StateSpan{{Class: info.StateClassOf(state), Frames: 1}},
	}
}
