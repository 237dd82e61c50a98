package tension

// Level is the qualitative reading of a tension value.
type Level string

const (
	LevelAlliance Level = "alliance"
	LevelFriendly Level = "friendly"
	LevelNeutral  Level = "neutral"
	LevelRivalry  Level = "rivalry"
	LevelHostile  Level = "hostile"
	LevelWar      Level = "war"
)

// Classify maps a tension value to its level. Thresholds are fixed:
// [-100,-76] alliance, [-75,-26] friendly, [-25,25] neutral,
// (25,50] rivalry, (50,99] hostile, 100 war.
func Classify(value float64) Level {
	switch {
	case value <= -76:
		return LevelAlliance
	case value <= -26:
		return LevelFriendly
	case value <= 25:
		return LevelNeutral
	case value <= 50:
		return LevelRivalry
	case value < 100:
		return LevelHostile
	default:
		return LevelWar
	}
}
