// Package pattern classifies runs of stones into named threat shapes.
// Every shape carries an explicit rank for ordering and a fixed heuristic
// score; comparisons always go through Rank, never declaration order.
package pattern

// Pattern is a closed set of named shapes a run of stones can form on a
// six-cell window or around a single stone.
type Pattern uint8

const (
	None Pattern = iota
	LiveOne
	SleepTwo
	LiveTwo
	SleepThree
	JumpThree
	LiveThree
	JumpFour
	RushFour
	LiveFour
	DoubleThree
	DoubleFour
	Five
	Six
	Overline
)

type shapeInfo struct {
	rank  int
	score int
	name  string
}

// The jump variants score near but below their contiguous counterparts.
var shapes = [...]shapeInfo{
	None:        {0, 0, "none"},
	LiveOne:     {1, 10, "live one"},
	SleepTwo:    {2, 50, "sleep two"},
	LiveTwo:     {3, 100, "live two"},
	SleepThree:  {4, 200, "sleep three"},
	JumpThree:   {5, 800, "jump three"},
	LiveThree:   {6, 1000, "live three"},
	JumpFour:    {7, 245000, "jump four"},
	RushFour:    {8, 250000, "rush four"},
	LiveFour:    {9, 250000, "live four"},
	DoubleThree: {10, 245000, "double three"},
	DoubleFour:  {11, 255000, "double four"},
	Five:        {12, 500000, "five"},
	Six:         {13, 1000000, "six"},
	Overline:    {14, 1000000, "overline"},
}

// Rank orders patterns by threat severity.
func (p Pattern) Rank() int { return shapes[p].rank }

// Score is the fixed heuristic value of the shape.
func (p Pattern) Score() int { return shapes[p].score }

func (p Pattern) String() string { return shapes[p].name }

// Critical shapes must be answered on the very next move.
func (p Pattern) Critical() bool { return p.Rank() >= RushFour.Rank() }

// High shapes deserve a defensive response when nothing critical exists.
func (p Pattern) High() bool { return p.Rank() >= LiveThree.Rank() }

// Medium covers jump threes and everything above.
func (p Pattern) Medium() bool { return p.Rank() >= JumpThree.Rank() }

// Compound reports a double-shape threat.
func (p Pattern) Compound() bool { return p == DoubleThree || p == DoubleFour }

// Winning reports a completed connection.
func (p Pattern) Winning() bool { return p.Rank() >= Six.Rank() }

// NearWinning covers five and above: one stone away from the win.
func (p Pattern) NearWinning() bool { return p.Rank() >= Five.Rank() }

// Classify maps a run description to a shape. count is the contiguous run
// length including the anchor stone, blocked the number of dead ends (0-2),
// gapped whether a single internal gap extends the run, and space the number
// of open cells available around it.
func Classify(count, blocked int, gapped bool, space int) Pattern {
	switch {
	case count >= 7:
		return Overline
	case count == 6:
		return Six
	case count == 5:
		return Five
	case count == 4:
		if blocked == 0 {
			return LiveFour
		}
		if blocked == 1 {
			if gapped {
				return JumpFour
			}
			return RushFour
		}
		return None
	case count == 3:
		if blocked == 0 {
			if gapped {
				return JumpThree
			}
			if space >= 2 {
				return LiveThree
			}
			return None
		}
		if blocked == 1 {
			return SleepThree
		}
		return None
	case count == 2:
		if blocked == 0 && space >= 2 {
			return LiveTwo
		}
		if blocked == 1 {
			return SleepTwo
		}
		return None
	case count == 1:
		if blocked == 0 {
			return LiveOne
		}
		return None
	}
	return None
}

// ClassifyWindow grades a six-cell window holding count stones of one owner
// and no stones of the other. Openness is implied by the free space left in
// the window rather than by scanning past its ends.
func ClassifyWindow(count, length int) Pattern {
	space := length - count
	switch {
	case count >= 6:
		return Six
	case count == 5:
		return Five
	case count == 4:
		if space >= 2 {
			return LiveFour
		}
		if space >= 1 {
			return RushFour
		}
		return None
	case count == 3:
		if space >= 3 {
			return LiveThree
		}
		if space >= 2 {
			return JumpThree
		}
		if space >= 1 {
			return SleepThree
		}
		return None
	case count == 2:
		if space >= 4 {
			return LiveTwo
		}
		if space >= 1 {
			return SleepTwo
		}
		return None
	case count == 1:
		return LiveOne
	}
	return None
}
