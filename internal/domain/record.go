package domain

// Column names shared by the pipeline artifacts.
const (
	ColumnID        = "id"
	ColumnRawText   = "raw_text"
	ColumnCleanText = "clean_text"
	ColumnCompound  = "compound"
	ColumnNeg       = "neg"
	ColumnNeu       = "neu"
	ColumnPos       = "pos"
	ColumnPolarity  = "polarity"
	ColumnLabel     = "label"
)

// RawColumns is the column set of the raw artifact.
var RawColumns = []string{ColumnID, ColumnRawText}

// ScoreColumns lists the score bundle fields appended by the Score stage.
var ScoreColumns = []string{ColumnCompound, ColumnNeg, ColumnNeu, ColumnPos, ColumnPolarity}

// Post is a single item returned by a fetch source.
type Post struct {
	ID   string
	Text string
}

// Record is one analyzed unit as it moves through the stages.
type Record struct {
	ID        string
	RawText   string
	CleanText string
	Scores    *ScoreBundle
}

// ScoreBundle holds both polarity measures computed for a text.
// Compound and the neg/neu/pos split come from the lexicon scorer;
// Polarity comes from the independent estimator.
type ScoreBundle struct {
	Compound float64
	Neg      float64
	Neu      float64
	Pos      float64
	Polarity float64
}

// NeutralBundle is the score of empty input.
func NeutralBundle() ScoreBundle {
	return ScoreBundle{Neu: 1}
}

// Label is the categorical sentiment of a record. Values read verbatim from
// a table may fall outside the three constants.
type Label string

const (
	LabelPositive Label = "Positive"
	LabelNegative Label = "Negative"
	LabelNeutral  Label = "Neutral"
)

// Compound thresholds.
const (
	CompoundPositiveThreshold = 0.05
	CompoundNegativeThreshold = -0.05
)

// LabelFromCompound classifies a compound score using the ±0.05 neutral band.
func LabelFromCompound(compound float64) Label {
	switch {
	case compound >= CompoundPositiveThreshold:
		return LabelPositive
	case compound <= CompoundNegativeThreshold:
		return LabelNegative
	default:
		return LabelNeutral
	}
}

// LabelFromPolarity classifies a polarity score. There is no neutral band:
// only an exact zero is Neutral.
func LabelFromPolarity(polarity float64) Label {
	switch {
	case polarity > 0:
		return LabelPositive
	case polarity < 0:
		return LabelNegative
	default:
		return LabelNeutral
	}
}
