package dto

import "github.com/AHSANooo/Clashes-Detector/internal/models"

// CourseRef selects a course either by catalog ID or by name, section and batch.
type CourseRef struct {
	ID      string `json:"id" validate:"required_without=Name"`
	Name    string `json:"name" validate:"required_without=ID"`
	Section string `json:"section"`
	Batch   string `json:"batch" validate:"required_with=Name"`
}

// TimetableRequest asks for the weekly sessions of the selected courses.
type TimetableRequest struct {
	Courses []CourseRef `json:"courses" validate:"required,min=1,max=40,dive"`
}

// TimetableResponse carries raw and normalised sessions plus the clashes of the latter.
type TimetableResponse struct {
	Courses       []models.Course  `json:"courses"`
	Sessions      []models.Session `json:"sessions"`
	Normalized    []models.Session `json:"normalized"`
	Clashes       []models.Clash   `json:"clashes"`
	ClashMessages []string         `json:"clashMessages"`
}

// SessionInput is a session supplied by the caller rather than read from the grid.
type SessionInput struct {
	CourseName string `json:"courseName" validate:"required"`
	Section    string `json:"section"`
	Day        string `json:"day" validate:"required,oneof=Monday Tuesday Wednesday Thursday Friday"`
	TimeSlot   string `json:"timeSlot" validate:"required"`
	Kind       string `json:"kind" validate:"omitempty,oneof=Lecture Lab"`
	Room       string `json:"room"`
	Batch      string `json:"batch"`
}

// ClashRequest checks an arbitrary list of sessions for clashes.
type ClashRequest struct {
	Sessions  []SessionInput `json:"sessions" validate:"required,min=1,dive"`
	Normalize *bool          `json:"normalize"`
}

// ClashResponse lists the clashes found and their human-readable form.
type ClashResponse struct {
	Sessions []models.Session `json:"sessions"`
	Clashes  []models.Clash   `json:"clashes"`
	Messages []string         `json:"messages"`
}

// OptimizeRequest picks one section per course across the given batches.
type OptimizeRequest struct {
	Batches  []string            `json:"batches" validate:"required,min=1,max=10,dive,required"`
	Courses  []string            `json:"courses" validate:"required,min=1,max=15,dive,required"`
	Excluded map[string][]string `json:"excludedSections"`
}

// OptimizeResponse is the chosen assignment with its clash messages.
type OptimizeResponse struct {
	ProposalID string `json:"proposalId"`
	models.ScheduleAssignment
	ClashMessages []string `json:"clashMessages"`
}

// ExportRequest renders either a stored proposal or a list of sessions.
type ExportRequest struct {
	Title      string         `json:"title" validate:"max=120"`
	ProposalID string         `json:"proposalId" validate:"required_without=Sessions"`
	Sessions   []SessionInput `json:"sessions" validate:"required_without=ProposalID,omitempty,min=1,dive"`
}

// ExportFile is a rendered download.
type ExportFile struct {
	Filename    string
	ContentType string
	Payload     []byte
}
