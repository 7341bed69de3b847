package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Operation ids received on the courses queue.
const (
	OpPublishNewCourseAccess           = "publishNewCourseAccess"
	OpResponseAppClassesAndMaterials   = "responseAppClassesAndMaterials"
	OpRequestAppClassesAndMaterials    = "requestAppClassesAndMaterials"
	OpNotificationNewClass             = "notificationNewClass"
	OpNotificationDeleteClass          = "notificationDeleteClass"
	OpNotificationAssociateMaterial    = "notificationAssociateMaterial"
	OpNotificationDisassociateMaterial = "notificationDisassociateMaterial"
	OpNotificationDeleteCourse         = "notificationDeleteCourse"
	OpNotificationUserDeletion         = "notificationUserDeletion"
	OpNotificationUserUpdate           = "notificationUserUpdate"
	OpRequestMaterialReviews           = "requestMaterialReviews"
)

// Operation ids this service sends.
const (
	OpResponseMaterialReviews = "responseMaterialReviews"
)

// Destination services of outbound notifications.
const (
	LearningService  = "learning-microservice"
	MaterialsService = "materials-microservice"
)

// Envelope is the wire shape shared by the queue and the outbound HTTP calls.
type Envelope struct {
	OperationID string          `json:"operationId"`
	Message     json.RawMessage `json:"message,omitempty"`
}

// NewEnvelope encodes message as the envelope body.
func NewEnvelope(operationID string, message any) (Envelope, error) {
	env := Envelope{OperationID: operationID}
	if message == nil {
		return env, nil
	}
	raw, err := json.Marshal(message)
	if err != nil {
		return env, fmt.Errorf("encode %s message: %w", operationID, err)
	}
	env.Message = raw
	return env, nil
}

// payload returns the message body, unwrapping a message that was sent as a
// JSON-encoded string.
func (e Envelope) payload() ([]byte, error) {
	raw := bytes.TrimSpace(e.Message)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil, nil
	}
	if raw[0] != '"' {
		return raw, nil
	}
	var inner string
	if err := json.Unmarshal(raw, &inner); err != nil {
		return nil, err
	}
	return []byte(inner), nil
}

// Event is one of the message kinds the courses queue carries. The set is
// closed: every implementation lives in this file.
type Event interface {
	Operation() string
	event()
}

type NewCourseAccess struct {
	Username string `json:"username"`
	CourseID string `json:"courseId"`
}

// ClassesAndMaterials is the learning service's answer to a fetch request.
// Last response wins: nothing ties it to a particular request.
type ClassesAndMaterials struct {
	CourseID  string
	Classes   []string
	Materials []string
}

func (e *ClassesAndMaterials) UnmarshalJSON(b []byte) error {
	var aux struct {
		CourseID    string   `json:"courseId"`
		ClassIDs    []string `json:"classIds"`
		MaterialIDs []string `json:"materialIds"`
		Classes     []string `json:"classes"`
		Materials   []string `json:"materials"`
	}
	if err := json.Unmarshal(b, &aux); err != nil {
		return err
	}
	e.CourseID = aux.CourseID
	e.Classes = firstNonNil(aux.ClassIDs, aux.Classes)
	e.Materials = firstNonNil(aux.MaterialIDs, aux.Materials)
	return nil
}

type ClassesAndMaterialsRequest struct {
	CourseID string `json:"courseId"`
}

type NewClass struct {
	CourseID string `json:"courseId"`
	ClassID  string `json:"classId"`
}

type DeleteClass struct {
	CourseID string `json:"courseId"`
	ClassID  string `json:"classId"`
}

type AssociateMaterial struct {
	CourseID   string `json:"courseId"`
	MaterialID string `json:"materialId"`
}

type DisassociateMaterial struct {
	CourseID   string `json:"courseId"`
	MaterialID string `json:"materialId"`
}

type DeleteCourse struct {
	CourseID string `json:"courseId"`
}

type UserDeletion struct {
	Username string `json:"username"`
}

type UserUpdate struct {
	UserProfile
}

type MaterialReviewsRequest struct {
	MaterialID string `json:"materialId"`
}

// UnknownEvent carries an operation id this service does not handle.
type UnknownEvent struct {
	OperationID string
}

func (*NewCourseAccess) Operation() string            { return OpPublishNewCourseAccess }
func (*ClassesAndMaterials) Operation() string        { return OpResponseAppClassesAndMaterials }
func (*ClassesAndMaterialsRequest) Operation() string { return OpRequestAppClassesAndMaterials }
func (*NewClass) Operation() string                   { return OpNotificationNewClass }
func (*DeleteClass) Operation() string                { return OpNotificationDeleteClass }
func (*AssociateMaterial) Operation() string          { return OpNotificationAssociateMaterial }
func (*DisassociateMaterial) Operation() string       { return OpNotificationDisassociateMaterial }
func (*DeleteCourse) Operation() string               { return OpNotificationDeleteCourse }
func (*UserDeletion) Operation() string               { return OpNotificationUserDeletion }
func (*UserUpdate) Operation() string                 { return OpNotificationUserUpdate }
func (*MaterialReviewsRequest) Operation() string     { return OpRequestMaterialReviews }
func (e *UnknownEvent) Operation() string             { return e.OperationID }

func (*NewCourseAccess) event()            {}
func (*ClassesAndMaterials) event()        {}
func (*ClassesAndMaterialsRequest) event() {}
func (*NewClass) event()                   {}
func (*DeleteClass) event()                {}
func (*AssociateMaterial) event()          {}
func (*DisassociateMaterial) event()       {}
func (*DeleteCourse) event()               {}
func (*UserDeletion) event()               {}
func (*UserUpdate) event()                 {}
func (*MaterialReviewsRequest) event()     {}
func (*UnknownEvent) event()               {}

// DecodeEvent parses a queue delivery. Unknown operation ids decode into
// *UnknownEvent rather than an error.
func DecodeEvent(raw []byte) (Event, error) {
	var env Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("%w: decode envelope: %v", ErrValidation, err)
	}

	var ev Event
	switch env.OperationID {
	case OpPublishNewCourseAccess:
		ev = &NewCourseAccess{}
	case OpResponseAppClassesAndMaterials:
		ev = &ClassesAndMaterials{}
	case OpRequestAppClassesAndMaterials:
		ev = &ClassesAndMaterialsRequest{}
	case OpNotificationNewClass:
		ev = &NewClass{}
	case OpNotificationDeleteClass:
		ev = &DeleteClass{}
	case OpNotificationAssociateMaterial:
		ev = &AssociateMaterial{}
	case OpNotificationDisassociateMaterial:
		ev = &DisassociateMaterial{}
	case OpNotificationDeleteCourse:
		ev = &DeleteCourse{}
	case OpNotificationUserDeletion:
		ev = &UserDeletion{}
	case OpNotificationUserUpdate:
		ev = &UserUpdate{}
	case OpRequestMaterialReviews:
		ev = &MaterialReviewsRequest{}
	default:
		return &UnknownEvent{OperationID: env.OperationID}, nil
	}

	body, err := env.payload()
	if err != nil {
		return nil, fmt.Errorf("%w: %s message: %v", ErrValidation, env.OperationID, err)
	}
	if body == nil {
		return ev, nil
	}
	if err := json.Unmarshal(body, ev); err != nil {
		return nil, fmt.Errorf("%w: %s message: %v", ErrValidation, env.OperationID, err)
	}
	return ev, nil
}

func firstNonNil(a, b []string) []string {
	if a != nil {
		return a
	}
	return b
}
