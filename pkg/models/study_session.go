package models

import "time"

const (
	// Five coins are credited for every full ten minutes of study
	studyRewardBlock = 10
	studyRewardCoins = 5
)

// StudySession is a block of study time on a subject
type StudySession struct {
	ID              string     `json:"id"`
	UserID          string     `json:"userId"`
	SubjectID       string     `json:"subjectId"`
	StartTime       time.Time  `json:"startTime"`
	EndTime         *time.Time `json:"endTime,omitempty"`
	DurationMinutes int        `json:"durationMinutes"`
}

// Open reports whether the session has not been stopped yet
func (s StudySession) Open() bool {
	return s.EndTime == nil
}

// Reward returns the coins a closed session earns
func (s StudySession) Reward() int {
	if s.DurationMinutes <= 0 {
		return 0
	}
	return s.DurationMinutes / studyRewardBlock * studyRewardCoins
}
