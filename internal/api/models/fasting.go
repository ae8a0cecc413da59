package models

// FastingStage is one metabolic stage of a fast.
type FastingStage struct {
	Index       int    `json:"index"`
	StartHour   int    `json:"startHour"`
	EndHour     *int   `json:"endHour,omitempty"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
}

// FastingStatus is the tracker state at request time.
type FastingStatus struct {
	State               string        `json:"state"`
	SessionID           *int64        `json:"sessionId,omitempty"`
	StartTime           *Timestamp    `json:"startTime,omitempty"`
	TargetHours         int           `json:"targetHours"`
	ElapsedSeconds      int64         `json:"elapsedSeconds"`
	Elapsed             string        `json:"elapsed"`
	ElapsedHours        float64       `json:"elapsedHours"`
	CurrentStage        *FastingStage `json:"currentStage,omitempty"`
	NextStage           *FastingStage `json:"nextStage,omitempty"`
	StageProgress       float64       `json:"stageProgress"`
	HoursUntilNextStage *float64      `json:"hoursUntilNextStage,omitempty"`
	TargetProgress      *float64      `json:"targetProgress,omitempty"`
}

// StartFastRequest starts a fast. TargetHours 0 means open-ended; when the
// field is omitted the default target applies.
type StartFastRequest struct {
	TargetHours *int `json:"targetHours,omitempty"`
}

// FastingSession is a past or running fast.
type FastingSession struct {
	ID              int64      `json:"id"`
	StartTime       Timestamp  `json:"startTime"`
	EndTime         *Timestamp `json:"endTime,omitempty"`
	TargetHours     int        `json:"targetHours"`
	DurationSeconds *int64     `json:"durationSeconds,omitempty"`
}
