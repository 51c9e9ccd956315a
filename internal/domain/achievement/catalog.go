package achievement

// Definition binds a catalog key to the predicate that earns it.
type Definition struct {
	// Key matches Achievement.Name in the seeded catalog.
	Key string

	// Check evaluates the predicate against a context snapshot.
	Check func(ctx Context) bool
}

// Catalog is an ordered, immutable registry of achievement definitions,
// constructed once at startup and injected into the Engine. Adding a rule
// means adding an entry here; the evaluation loop never changes.
type Catalog []Definition

// DefaultCatalog returns the built-in registry. Keys must match the seeded
// Achievement rows by name.
func DefaultCatalog() Catalog {
	return Catalog{
		// Milestone achievements
		{Key: "First Steps", Check: func(c Context) bool { return c.FirstCompletion }},
		{Key: "Getting Started", Check: func(c Context) bool { return c.LessonsCompleted >= 5 }},
		{Key: "Dedicated Learner", Check: func(c Context) bool { return c.LessonsCompleted >= 25 }},
		{Key: "Knowledge Seeker", Check: func(c Context) bool { return c.LessonsCompleted >= 50 }},
		{Key: "Century", Check: func(c Context) bool { return c.LessonsCompleted >= 100 }},

		// XP achievements
		{Key: "XP Collector", Check: func(c Context) bool { return c.TotalXP >= 100 }},
		{Key: "XP Hunter", Check: func(c Context) bool { return c.TotalXP >= 500 }},
		{Key: "XP Master", Check: func(c Context) bool { return c.TotalXP >= 2000 }},
		{Key: "XP Legend", Check: func(c Context) bool { return c.TotalXP >= 5000 }},

		// Level achievements
		{Key: "Level 5", Check: func(c Context) bool { return c.CurrentLevel >= 5 }},
		{Key: "Level 10", Check: func(c Context) bool { return c.CurrentLevel >= 10 }},
		{Key: "Level 20", Check: func(c Context) bool { return c.CurrentLevel >= 20 }},

		// Streak achievements
		{Key: "On Fire", Check: func(c Context) bool { return c.CurrentStreak >= 3 }},
		{Key: "Week Warrior", Check: func(c Context) bool { return c.CurrentStreak >= 7 }},
		{Key: "Unstoppable", Check: func(c Context) bool { return c.LongestStreak >= 14 }},
		{Key: "Month Master", Check: func(c Context) bool { return c.LongestStreak >= 30 }},

		// Performance achievements
		{Key: "Perfect Score", Check: func(c Context) bool { return c.IsPerfectScore }},
		{Key: "Persistent", Check: func(c Context) bool { return c.TotalAttempts >= 50 }},

		// Track mastery achievements
		{Key: "Track Complete", Check: func(c Context) bool { return c.UniqueTracksCompleted >= 1 }},
		{Key: "Track Master", Check: func(c Context) bool { return c.UniqueTracksCompleted >= 5 }},
	}
}

// SeedEntry describes one catalog row for database seeding.
type SeedEntry struct {
	Name        string
	Description string
	Icon        string
}

// SeedCatalog returns the static rows matching DefaultCatalog by name.
func SeedCatalog() []SeedEntry {
	return []SeedEntry{
		{Name: "First Steps", Description: "Complete your first lesson", Icon: "🐣"},
		{Name: "Getting Started", Description: "Complete 5 lessons", Icon: "📚"},
		{Name: "Dedicated Learner", Description: "Complete 25 lessons", Icon: "🎓"},
		{Name: "Knowledge Seeker", Description: "Complete 50 lessons", Icon: "🔬"},
		{Name: "Century", Description: "Complete 100 lessons", Icon: "💯"},

		{Name: "XP Collector", Description: "Earn 100 XP", Icon: "⭐"},
		{Name: "XP Hunter", Description: "Earn 500 XP", Icon: "🌟"},
		{Name: "XP Master", Description: "Earn 2,000 XP", Icon: "💫"},
		{Name: "XP Legend", Description: "Earn 5,000 XP", Icon: "🏆"},

		{Name: "Level 5", Description: "Reach Level 5", Icon: "🔥"},
		{Name: "Level 10", Description: "Reach Level 10", Icon: "⚡"},
		{Name: "Level 20", Description: "Reach Level 20", Icon: "👑"},

		{Name: "On Fire", Description: "3-day streak", Icon: "🔥"},
		{Name: "Week Warrior", Description: "7-day streak", Icon: "⚔️"},
		{Name: "Unstoppable", Description: "14-day longest streak", Icon: "🚀"},
		{Name: "Month Master", Description: "30-day longest streak", Icon: "🏅"},

		{Name: "Perfect Score", Description: "Score 100% on a lesson", Icon: "💎"},
		{Name: "Persistent", Description: "Make 50 total attempts", Icon: "🔁"},

		{Name: "Track Complete", Description: "Complete all lessons in a track", Icon: "🗺️"},
		{Name: "Track Master", Description: "Complete 5 tracks", Icon: "🌍"},
	}
}
