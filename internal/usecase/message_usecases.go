package usecase

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/example/courses-service/internal/domain"
)

// ProcessIncomingMessage applies one queue delivery to course state and the
// classes/materials cache. Errors are returned for logging; the consumer
// acknowledges the delivery either way.
type ProcessIncomingMessage struct {
	Courses  domain.CourseRepository
	Reviews  domain.ReviewRepository
	Profiles domain.ProfileRepository
	Cache    domain.ListCache
	Notifier domain.Notifier
	Log      *zap.Logger
}

func (uc ProcessIncomingMessage) Execute(ctx context.Context, raw []byte) error {
	ev, err := domain.DecodeEvent(raw)
	if err != nil {
		return err
	}
	return uc.Dispatch(ctx, ev)
}

// Dispatch routes a decoded event to its handler.
func (uc ProcessIncomingMessage) Dispatch(ctx context.Context, ev domain.Event) error {
	log := uc.logger().With(zap.String("operation", ev.Operation()))

	var err error
	switch e := ev.(type) {
	case *domain.NewCourseAccess:
		err = uc.updateCourse(ctx, e.CourseID, func(c *domain.Course) bool { return c.GrantAccess(e.Username) })
	case *domain.ClassesAndMaterials:
		err = uc.cacheClassesAndMaterials(ctx, e)
	case *domain.ClassesAndMaterialsRequest:
		err = uc.sendClassesAndMaterials(ctx, e.CourseID, domain.OpResponseAppClassesAndMaterials)
	case *domain.NewClass:
		err = uc.updateCourse(ctx, e.CourseID, func(c *domain.Course) bool { return c.AddClass(e.ClassID) })
	case *domain.DeleteClass:
		err = uc.updateCourse(ctx, e.CourseID, func(c *domain.Course) bool { return c.RemoveClass(e.ClassID) })
	case *domain.AssociateMaterial:
		err = uc.updateCourse(ctx, e.CourseID, func(c *domain.Course) bool { return c.AddMaterial(e.MaterialID) })
	case *domain.DisassociateMaterial:
		err = uc.updateCourse(ctx, e.CourseID, func(c *domain.Course) bool { return c.RemoveMaterial(e.MaterialID) })
	case *domain.DeleteCourse:
		err = uc.sendClassesAndMaterials(ctx, e.CourseID, domain.OpNotificationDeleteCourse)
	case *domain.UserDeletion:
		err = uc.deleteUser(ctx, e.Username)
	case *domain.UserUpdate:
		err = uc.updateProfile(ctx, e.UserProfile)
	case *domain.MaterialReviewsRequest:
		err = uc.sendMaterialRating(ctx, e.MaterialID)
	case *domain.UnknownEvent:
		log.Debug("ignoring unknown operation")
	default:
		return fmt.Errorf("unhandled event %T", ev)
	}
	if err != nil {
		return fmt.Errorf("%s: %w", ev.Operation(), err)
	}
	return nil
}

func (uc ProcessIncomingMessage) updateCourse(ctx context.Context, courseID string, op func(c *domain.Course) bool) error {
	_, err := mutateCourse(ctx, uc.Courses, courseID, listOp(op))
	return ignoreNotFound(err)
}

// cacheClassesAndMaterials overwrites both keys whether or not a fetch was
// pending; the newest response for a course wins.
func (uc ProcessIncomingMessage) cacheClassesAndMaterials(ctx context.Context, e *domain.ClassesAndMaterials) error {
	if e.CourseID == "" {
		return fmt.Errorf("%w: response without courseId", domain.ErrValidation)
	}
	classesErr := uc.Cache.Set(ctx, domain.CacheKey(e.CourseID, domain.ResourceClasses), nonNil(e.Classes), domain.ResourceTTL)
	materialsErr := uc.Cache.Set(ctx, domain.CacheKey(e.CourseID, domain.ResourceMaterials), nonNil(e.Materials), domain.ResourceTTL)
	return errors.Join(classesErr, materialsErr)
}

// sendClassesAndMaterials tells the learning service which classes and
// materials the course holds; an unknown course is reported with empty lists.
func (uc ProcessIncomingMessage) sendClassesAndMaterials(ctx context.Context, courseID, operationID string) error {
	classes, materials := []string{}, []string{}
	c, err := uc.Courses.GetByID(ctx, courseID)
	switch {
	case err == nil:
		classes, materials = nonNil(c.Classes), nonNil(c.Materials)
	case !errors.Is(err, domain.ErrNotFound):
		return err
	}
	uc.Notifier.Notify(ctx, domain.LearningService, operationID, map[string]any{
		"courseId":    courseID,
		"classIds":    classes,
		"materialIds": materials,
	})
	return nil
}

// deleteUser removes username from the access list of every course that
// grants it, deletes the courses the user created and drops the user's
// profile view.
func (uc ProcessIncomingMessage) deleteUser(ctx context.Context, username string) error {
	if username == "" {
		return fmt.Errorf("%w: user deletion without username", domain.ErrValidation)
	}
	log := uc.logger().With(zap.String("username", username))

	granted, err := uc.Courses.ListByAccess(ctx, username)
	if err != nil {
		return fmt.Errorf("list courses granting access: %w", err)
	}
	var errs []error
	for _, c := range granted {
		if err := uc.updateCourse(ctx, c.ID, func(c *domain.Course) bool { return c.RevokeAccess(username) }); err != nil {
			errs = append(errs, fmt.Errorf("revoke access on %s: %w", c.ID, err))
		}
	}

	deleted, err := uc.Courses.DeleteByCreator(ctx, username)
	if err != nil {
		errs = append(errs, fmt.Errorf("delete created courses: %w", err))
	}
	profiles, err := uc.Profiles.DeleteByUsername(ctx, username)
	if err != nil {
		errs = append(errs, fmt.Errorf("delete profile view: %w", err))
	}

	log.Info("user removed",
		zap.Int("access_revoked", len(granted)),
		zap.Int64("courses_deleted", deleted),
		zap.Int64("profiles_deleted", profiles),
	)
	return errors.Join(errs...)
}

func (uc ProcessIncomingMessage) updateProfile(ctx context.Context, p domain.UserProfile) error {
	if p.Username == "" {
		return fmt.Errorf("%w: profile without username", domain.ErrValidation)
	}
	return uc.Profiles.Upsert(ctx, p)
}

func (uc ProcessIncomingMessage) sendMaterialRating(ctx context.Context, materialID string) error {
	if materialID == "" {
		return fmt.Errorf("%w: request without materialId", domain.ErrValidation)
	}
	reviews, err := uc.Reviews.Find(ctx, domain.ReviewFilter{Material: materialID})
	if err != nil {
		return err
	}
	uc.Notifier.Notify(ctx, domain.MaterialsService, domain.OpResponseMaterialReviews, map[string]any{
		"materialId": materialID,
		"review":     domain.MeanRating(reviews),
	})
	return nil
}

func (uc ProcessIncomingMessage) logger() *zap.Logger {
	if uc.Log == nil {
		return zap.NewNop()
	}
	return uc.Log
}

func nonNil(ids []string) []string {
	if ids == nil {
		return []string{}
	}
	return ids
}
