package model

// PlayerGameStats is one player's record within a single game.
type PlayerGameStats struct {
	TotalGames int `json:"totalGames"`
	Wins       int `json:"wins"`
	BestScore  int `json:"bestScore"`
}

// GameStats summarizes every session of one game.
type GameStats struct {
	TotalPlays  int                        `json:"totalPlays"`
	FirstPlay   string                     `json:"firstPlay"`
	LastPlay    string                     `json:"lastPlay"`
	MinDuration int                        `json:"minDuration"`
	MaxDuration int                        `json:"maxDuration"`
	Players     map[string]PlayerGameStats `json:"players"`
}

// Streaks holds win/loss runs for a player ordered by session date.
type Streaks struct {
	CurrentWinStreak  int `json:"currentWinStreak"`
	LongestWinStreak  int `json:"longestWinStreak"`
	LongestLossStreak int `json:"longestLossStreak"`
}

// GameCount pairs a game with a number of plays.
type GameCount struct {
	Game  string `json:"game"`
	Count int    `json:"count"`
}

// GameRecord is a player's plays and wins in one game.
type GameRecord struct {
	Game    string `json:"game"`
	Plays   int    `json:"plays"`
	Wins    int    `json:"wins"`
	WinRate int    `json:"winRate"`
}

// Opponent is the player met most often.
type Opponent struct {
	Name  string `json:"name"`
	Games int    `json:"games"`
}

// RecentGame is a compact view of a recent session from one player's perspective.
type RecentGame struct {
	Game   string `json:"game"`
	Date   string `json:"date"`
	Winner string `json:"winner"`
	Result string `json:"result"`
}

// PlayerStats is the per-player ranking entry.
type PlayerStats struct {
	PlayerName       string       `json:"playerName"`
	TotalGames       int          `json:"totalGames"`
	Wins             int          `json:"wins"`
	Losses           int          `json:"losses"`
	WinRate          int          `json:"winRate"`
	TotalPlayTime    int          `json:"totalPlayTime"`
	AveragePlayTime  int          `json:"averagePlayTime"`
	AverageScore     int          `json:"averageScore"`
	UniqueGames      int          `json:"uniqueGames"`
	LongestGame      int          `json:"longestGame"`
	ShortestGame     int          `json:"shortestGame"`
	LastPlay         string       `json:"lastPlay,omitempty"`
	FavoriteGame     *GameCount   `json:"favoriteGame"`
	BestGame         *GameRecord  `json:"bestGame"`
	FavoriteOpponent *Opponent    `json:"favoriteOpponent"`
	Streaks          Streaks      `json:"streaks"`
	RecentGames      []RecentGame `json:"recentGames"`
	GameBreakdown    []GameRecord `json:"gameBreakdown"`
}

// LeaderboardEntry is one row of a per-game leaderboard.
type LeaderboardEntry struct {
	Name       string `json:"name"`
	Wins       int    `json:"wins"`
	Total      int    `json:"total"`
	Percentage int    `json:"percentage"`
	BestScore  int    `json:"bestScore"`
}

// BestScore is the highest single-session total recorded for a game.
type BestScore struct {
	Player string `json:"player"`
	Score  int    `json:"score"`
}

// Achievement names the player holding a record.
type Achievement struct {
	PlayerName string `json:"playerName"`
	Value      int    `json:"value"`
}

// Summary aggregates all players.
type Summary struct {
	HasData        bool         `json:"hasData"`
	Players        int          `json:"players"`
	TotalGames     int          `json:"totalGames"`
	TotalPlayTime  int          `json:"totalPlayTime"`
	TotalHours     int          `json:"totalHours"`
	AverageWinRate int          `json:"averageWinRate"`
	MostWins       *Achievement `json:"mostWins"`
	BestWinRate    *Achievement `json:"bestWinRate"`
	MostActive     *Achievement `json:"mostActive"`
}

// MonthActivity counts sessions played in a calendar month (YYYY-MM).
type MonthActivity struct {
	Month string `json:"month"`
	Plays int    `json:"plays"`
}
