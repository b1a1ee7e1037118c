// Package service orchestrates the workbook and visitor flows over the
// repositories, media storage and event publishers.
package service

import (
    "context"
    "errors"
    "strconv"
    "strings"

    "github.com/sirupsen/logrus"

    "github.com/iliyamo/visitor-register/internal/config"
    "github.com/iliyamo/visitor-register/internal/model"
    "github.com/iliyamo/visitor-register/internal/repository"
    "github.com/iliyamo/visitor-register/internal/visitor"
)

// WorkbookService manages workbook types, their shared mandatory fields and
// member workbooks.
type WorkbookService struct {
    Types     *repository.WorkbookTypeRepo
    Workbooks *repository.WorkbookRepo
    Logger    logrus.FieldLogger
}

func NewWorkbookService(types *repository.WorkbookTypeRepo, workbooks *repository.WorkbookRepo, logger logrus.FieldLogger) *WorkbookService {
    return &WorkbookService{Types: types, Workbooks: workbooks, Logger: logger}
}

// CreateWorkbookInput is a member's request for a new workbook.
type CreateWorkbookInput struct {
    Name            string
    TypeID          uint64
    MandatoryFields []string
}

// ListTypes returns every workbook type.  An empty registry is a failure.
func (s *WorkbookService) ListTypes(ctx context.Context) ([]model.WorkbookType, error) {
    types, err := s.Types.List(ctx)
    if err != nil {
        return nil, s.persistence("ListTypes", err)
    }
    if len(types) == 0 {
        return nil, visitor.ErrPersistence("No workbook types found", nil)
    }
    return types, nil
}

// CreateType registers a workbook type.  fields may be empty; when given
// they must contain at least one known field.
func (s *WorkbookService) CreateType(ctx context.Context, name, icon string, fields []string) (*model.WorkbookType, error) {
    t := &model.WorkbookType{Type: strings.TrimSpace(name), Icon: strings.TrimSpace(icon)}
    if strings.TrimSpace(strings.Join(fields, "")) != "" {
        schema, err := visitor.DeriveSchema(fields)
        if err != nil {
            return nil, err
        }
        t.MandatoryFields = schema
    }
    if err := s.Types.Create(ctx, t); err != nil {
        if errors.Is(err, repository.ErrDuplicate) {
            return nil, &visitor.Error{Kind: visitor.KindDuplicateWorkbookType, Message: "Workbook type already exists"}
        }
        return nil, s.persistence("CreateType", err)
    }
    return t, nil
}

// UpdateTypeFields replaces the mandatory fields of a type with the full
// set given.  The change is global to the type; concurrent updates are
// last-writer-wins.
func (s *WorkbookService) UpdateTypeFields(ctx context.Context, typeID uint64, fields []string) (visitor.Schema, error) {
    schema, err := visitor.DeriveSchema(fields)
    if err != nil {
        return visitor.Schema{}, err
    }
    if err := s.Types.UpdateMandatoryFields(ctx, typeID, schema); err != nil {
        if errors.Is(err, repository.ErrWorkbookTypeNotFound) {
            return visitor.Schema{}, visitor.ErrNotFound("Workbook type", strconv.FormatUint(typeID, 10))
        }
        return visitor.Schema{}, s.persistence("UpdateTypeFields", err)
    }
    return schema, nil
}

// ListWorkbooks returns the member's workbooks; none is a failure.
func (s *WorkbookService) ListWorkbooks(ctx context.Context, memberID uint64) ([]model.Workbook, error) {
    list, err := s.Workbooks.ListByMember(ctx, memberID)
    if err != nil {
        return nil, s.persistence("ListWorkbooks", err)
    }
    if len(list) == 0 {
        return nil, visitor.ErrPersistence("No workbooks found", nil)
    }
    return list, nil
}

// CreateWorkbook checks the type exists, rejects a second workbook of the
// same type for the member, derives the schema, overwrites the type's
// mandatory fields and then stores the workbook.  The schema overwrite is
// not undone if the final insert fails.
func (s *WorkbookService) CreateWorkbook(ctx context.Context, memberID uint64, in CreateWorkbookInput) (*model.Workbook, error) {
    wt, err := s.Types.GetByID(ctx, in.TypeID)
    if err != nil {
        if errors.Is(err, repository.ErrWorkbookTypeNotFound) {
            return nil, visitor.ErrNotFound("Workbook type", strconv.FormatUint(in.TypeID, 10))
        }
        return nil, s.persistence("CreateWorkbook", err)
    }
    exists, err := s.Workbooks.ExistsForMemberType(ctx, memberID, wt.ID)
    if err != nil {
        return nil, s.persistence("CreateWorkbook", err)
    }
    if exists {
        return nil, visitor.ErrDuplicateWorkbookType()
    }
    schema, err := visitor.DeriveSchema(in.MandatoryFields)
    if err != nil {
        return nil, err
    }
    if err := s.Types.UpdateMandatoryFields(ctx, wt.ID, schema); err != nil {
        return nil, s.persistence("CreateWorkbook", err)
    }

    w := &model.Workbook{MemberID: memberID, WorkbookTypeID: wt.ID, Name: strings.TrimSpace(in.Name)}
    if err := s.Workbooks.Create(ctx, w); err != nil {
        if errors.Is(err, repository.ErrConflict) {
            return nil, visitor.ErrDuplicateWorkbookType()
        }
        return nil, s.persistence("CreateWorkbook", err)
    }
    w.Type = wt.Type
    w.Icon = wt.Icon
    w.MandatoryFields = schema
    return w, nil
}

func (s *WorkbookService) persistence(fn string, err error) error {
    config.LogError(s.Logger, "workbook", fn, "repository", nil, err)
    return visitor.ErrPersistence("", err)
}
