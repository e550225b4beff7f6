package scoring

// Category keyword tables. These are fixed product data; scoring reads them,
// never mutates them. Unrecognised categories fall back to the category name
// itself as the sole keyword.
var categoryKeywords = map[string][]string{
	"fitness": {"workout", "exercise", "gym", "run", "running", "walk", "weights", "cardio",
		"pushups", "squats", "yoga", "stretch", "miles", "steps", "active"},
	"productivity": {"work", "project", "task", "completed", "finished", "shipped", "meeting",
		"code", "coding", "wrote", "built", "created", "delivered", "deadline"},
	"learning": {"read", "reading", "book", "studied", "study", "learned", "course", "class",
		"tutorial", "practice", "skill", "chapter", "pages", "lesson"},
	"health": {"sleep", "slept", "water", "meal", "ate", "diet", "vitamin", "meditation",
		"meditate", "rest", "recovery", "hydration", "nutrition"},
	"discipline": {"woke", "early", "routine", "habit", "consistent", "daily", "streak",
		"morning", "schedule", "planned", "followed", "stuck"},
	"wellbeing": {"happy", "grateful", "mood", "feeling", "relaxed", "calm", "peace",
		"joy", "content", "mindful", "present", "balanced"},
}

// Words signalling above-baseline effort (+2 each).
var effortPositive = []string{"hard", "challenging", "pushed", "intense", "maximum", "best", "crushed",
	"exceeded", "extra", "above", "beyond", "difficult"}

// Words signalling minimal or skipped effort (-1 each).
var effortNegative = []string{"easy", "minimal", "quick", "brief", "short", "simple", "basic",
	"half", "barely", "almost", "skipped", "missed"}

// Verbs indicating the user actually did something.
var activityVerbs = []string{"did", "completed", "finished", "worked", "exercised", "practiced",
	"wrote", "read", "studied", "built", "created", "made", "went", "ran"}
