package domain

// Block is an independent category of daily self-report.
type Block string

const (
	BlockBody      Block = "body"
	BlockWork      Block = "work"
	BlockNutrition Block = "nutrition"
)

// AllBlocks returns the blocks in their display order.
func AllBlocks() []Block {
	return []Block{BlockBody, BlockWork, BlockNutrition}
}

// Valid reports whether b is a known block.
func (b Block) Valid() bool {
	switch b {
	case BlockBody, BlockWork, BlockNutrition:
		return true
	}
	return false
}

// ScoreBearing reports whether the block contributes a numeric Pulse score.
// Nutrition is narrative-only: its entries count toward block coverage and
// synthesis eligibility but never toward the combined score arithmetic.
func (b Block) ScoreBearing() bool {
	return b == BlockBody || b == BlockWork
}
