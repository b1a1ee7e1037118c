package service

import (
    "context"
    "errors"
    "strconv"
    "time"

    "github.com/sirupsen/logrus"

    "github.com/iliyamo/visitor-register/internal/config"
    "github.com/iliyamo/visitor-register/internal/export"
    "github.com/iliyamo/visitor-register/internal/media"
    "github.com/iliyamo/visitor-register/internal/model"
    "github.com/iliyamo/visitor-register/internal/queue"
    "github.com/iliyamo/visitor-register/internal/repository"
    "github.com/iliyamo/visitor-register/internal/visitor"
)

const (
    publishTimeout = 3 * time.Second
    nameSuggestMax = 5
)

// VisitorService registers visitors against a member's workbook and reads
// them back through the workbook's mandatory-field projection.
type VisitorService struct {
    Workbooks *repository.WorkbookRepo
    Visitors  *repository.VisitorRepo
    Attacher  *media.Attacher
    Publisher Publisher
    Projector visitor.Projector
    Logger    logrus.FieldLogger
}

// SearchInput carries the optional search filters.  WorkbookID selects the
// projection schema as well as narrowing the rows; without it every field
// is projected.
type SearchInput struct {
    WorkbookID       uint64
    Name             string
    MobileNo         string
    VehicleNo        string
    FromPlace        string
    DestinationPlace string
    InFrom           *time.Time
    OutTo            *time.Time
}

// Register runs the intake flow: scoped workbook lookup, validation
// against the type's current schema, attachment normalization and storage,
// record creation and a best-effort visitor.registered event.  Stored media
// are not removed when the record insert fails.
func (s *VisitorService) Register(ctx context.Context, memberID, workbookID uint64, payload visitor.FieldMap, attachments visitor.Attachments) (v *model.Visitor, err error) {
    defer func() { intakeTotal.WithLabelValues(intakeResult(err)).Inc() }()

    wb, err := s.workbook(ctx, memberID, workbookID)
    if err != nil {
        return nil, err
    }
    in, err := visitor.ValidateIntake(wb.MandatoryFields, payload, attachments)
    if err != nil {
        return nil, err
    }

    refs := map[visitor.Field]string{}
    for _, f := range []visitor.Field{visitor.FieldPhoto, visitor.FieldSignature} {
        if !in.Attachments.Has(f) {
            continue
        }
        key, err := s.Attacher.Attach(ctx, f, wb.ID, in.Attachments[f])
        if err != nil {
            if ve, ok := visitor.AsError(err); ok && ve.Kind == visitor.KindGenericPersistenceFailure {
                config.LogError(s.Logger, "visitor", "Register", "store attachment", logrus.Fields{"field": f, "wb_id": wb.ID}, err)
            }
            return nil, err
        }
        refs[f] = key
    }

    rec := in.Record(refs[visitor.FieldPhoto], refs[visitor.FieldSignature])
    row := model.NewVisitor(memberID, wb.ID, rec)
    if err := s.Visitors.Create(ctx, &row); err != nil {
        config.LogError(s.Logger, "visitor", "Register", "create visitor", logrus.Fields{"wb_id": wb.ID, "orphans": refs}, err)
        return nil, visitor.ErrPersistence("", err)
    }

    s.publish(ctx, wb, row)
    return &row, nil
}

func (s *VisitorService) publish(ctx context.Context, wb *model.Workbook, v model.Visitor) {
    if s.Publisher == nil {
        return
    }
    ev := queue.VisitorRegisteredEvent{
        VisitorID:    v.ID,
        MemberID:     v.MemberID,
        WorkbookID:   wb.ID,
        WorkbookName: wb.Name,
        Name:         v.Name,
        Photo:        v.Photo,
        Signature:    v.Signature,
        RegisteredAt: v.CreatedAt.UTC().Format(time.RFC3339),
    }
    if v.InTime != nil {
        ev.InTime = v.InTime.Format(visitor.TimestampLayout)
    }
    pctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
    defer cancel()
    if err := s.Publisher.PublishVisitorRegistered(pctx, ev); err != nil {
        s.Logger.WithError(err).WithField("visitor_id", v.ID).Warn("publish visitor.registered failed")
    }
}

// List projects the workbook's active visitors; an empty projection is
// NoMatchingVisitors.
func (s *VisitorService) List(ctx context.Context, memberID, workbookID uint64) ([]visitor.Row, error) {
    wb, err := s.workbook(ctx, memberID, workbookID)
    if err != nil {
        return nil, err
    }
    vs, err := s.Visitors.ListActiveByWorkbook(ctx, memberID, wb.ID)
    if err != nil {
        return nil, s.persistence("List", err)
    }
    return s.Projector.ProjectOrFail(model.Records(vs), wb.MandatoryFields)
}

// Search filters the member's visitors and projects the matches.
func (s *VisitorService) Search(ctx context.Context, memberID uint64, in SearchInput) ([]visitor.Row, error) {
    schema := visitor.FullSchema()
    if in.WorkbookID != 0 {
        wb, err := s.workbook(ctx, memberID, in.WorkbookID)
        if err != nil {
            return nil, err
        }
        if !wb.MandatoryFields.Empty() {
            schema = wb.MandatoryFields
        }
    }
    vs, err := s.Visitors.Search(ctx, repository.VisitorSearchQuery{
        MemberID:         memberID,
        WorkbookID:       in.WorkbookID,
        Name:             in.Name,
        MobileNo:         in.MobileNo,
        VehicleNo:        in.VehicleNo,
        FromPlace:        in.FromPlace,
        DestinationPlace: in.DestinationPlace,
        InFrom:           in.InFrom,
        OutTo:            in.OutTo,
    })
    if err != nil {
        return nil, s.persistence("Search", err)
    }
    return s.Projector.ProjectOrFail(model.Records(vs), schema)
}

// Names suggests up to five distinct visitor names with the given prefix.
func (s *VisitorService) Names(ctx context.Context, memberID uint64, prefix string) ([]string, error) {
    names, err := s.Visitors.NamesByPrefix(ctx, memberID, prefix, nameSuggestMax)
    if err != nil {
        return nil, s.persistence("Names", err)
    }
    return names, nil
}

// Export renders the workbook's projected visitors as XLSX.
func (s *VisitorService) Export(ctx context.Context, memberID, workbookID uint64) ([]byte, string, error) {
    wb, err := s.workbook(ctx, memberID, workbookID)
    if err != nil {
        return nil, "", err
    }
    vs, err := s.Visitors.ListActiveByWorkbook(ctx, memberID, wb.ID)
    if err != nil {
        return nil, "", s.persistence("Export", err)
    }
    rows, err := s.Projector.ProjectOrFail(model.Records(vs), wb.MandatoryFields)
    if err != nil {
        return nil, "", err
    }
    data, err := export.VisitorsWorkbook(wb.MandatoryFields, rows)
    if err != nil {
        return nil, "", s.persistence("Export", err)
    }
    return data, "visitors_" + strconv.FormatUint(wb.ID, 10) + ".xlsx", nil
}

func (s *VisitorService) workbook(ctx context.Context, memberID, workbookID uint64) (*model.Workbook, error) {
    wb, err := s.Workbooks.GetByIDForMember(ctx, workbookID, memberID)
    if err != nil {
        if errors.Is(err, repository.ErrWorkbookNotFound) {
            return nil, visitor.ErrNotFound("Workbook", strconv.FormatUint(workbookID, 10))
        }
        return nil, s.persistence("workbook", err)
    }
    return wb, nil
}

func (s *VisitorService) persistence(fn string, err error) error {
    config.LogError(s.Logger, "visitor", fn, "repository", nil, err)
    return visitor.ErrPersistence("", err)
}
