package statsfeed

type scheduleEnvelope struct {
	TotalGames int            `json:"totalGames"`
	Dates      []scheduleDate `json:"dates"`
}

type scheduleDate struct {
	Date  string         `json:"date"`
	Games []scheduleGame `json:"games"`
}

type scheduleGame struct {
	GamePk   int64         `json:"gamePk"`
	GameDate string        `json:"gameDate"`
	Status   gameStatus    `json:"status"`
	Teams    scheduleTeams `json:"teams"`
}

type gameStatus struct {
	AbstractGameState string `json:"abstractGameState"`
	DetailedState     string `json:"detailedState"`
}

type scheduleTeams struct {
	Home teamSide `json:"home"`
	Away teamSide `json:"away"`
}

type teamSide struct {
	Score *int    `json:"score"`
	Team  teamRef `json:"team"`
}

type teamRef struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}
