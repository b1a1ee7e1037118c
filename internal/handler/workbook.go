package handler

import (
    "encoding/json"
    "net/http"
    "strconv"

    "github.com/labstack/echo/v4"
    "github.com/sirupsen/logrus"

    "github.com/iliyamo/visitor-register/internal/middleware"
    "github.com/iliyamo/visitor-register/internal/model"
    "github.com/iliyamo/visitor-register/internal/service"
    "github.com/iliyamo/visitor-register/internal/visitor"
)

// WorkbookHandler serves workbook types and member workbooks.
type WorkbookHandler struct {
    Svc    *service.WorkbookService
    Media  visitor.Projector
    Logger logrus.FieldLogger
}

func NewWorkbookHandler(svc *service.WorkbookService, media visitor.Projector, logger logrus.FieldLogger) *WorkbookHandler {
    return &WorkbookHandler{Svc: svc, Media: media, Logger: logger}
}

type createTypeReq struct {
    Type            string    `json:"type" validate:"required,max=100"`
    Icon            string    `json:"icon" validate:"max=255"`
    MandatoryFields fieldList `json:"mandatory_fields"`
}

type updateFieldsReq struct {
    MandatoryFields fieldList `json:"mandatory_fields" validate:"required"`
}

type createWorkbookReq struct {
    Name            string    `json:"wb_name" validate:"required,max=100"`
    TypeID          uint64    `json:"wb_type_id" validate:"required"`
    MandatoryFields fieldList `json:"mandatory_fields" validate:"required"`
}

type wbTypeOut struct {
    Type            string   `json:"wb_type"`
    TypeID          uint64   `json:"wb_type_id"`
    ImgURL          string   `json:"wb_img_url"`
    MandatoryFields []string `json:"mandatory_fields"`
}

type workbookOut struct {
    ID              uint64   `json:"wb_id"`
    Name            string   `json:"wb_name"`
    TypeID          uint64   `json:"wb_type_id"`
    Type            string   `json:"wb_type"`
    ImgURL          string   `json:"wb_img_url"`
    MandatoryFields []string `json:"mandatory_fields"`
}

// fieldList accepts mandatory_fields either as a comma-separated string
// ("name,mobile_no") or as a JSON array of names.
type fieldList []string

func (l *fieldList) UnmarshalJSON(b []byte) error {
    var s string
    if err := json.Unmarshal(b, &s); err == nil {
        *l = fieldList{s}
        return nil
    }
    var arr []string
    if err := json.Unmarshal(b, &arr); err != nil {
        return err
    }
    *l = arr
    return nil
}

func fieldNames(s visitor.Schema) []string {
    out := []string{}
    for _, f := range s.Fields() {
        out = append(out, string(f))
    }
    return out
}

func (h *WorkbookHandler) typeOut(t model.WorkbookType) wbTypeOut {
    return wbTypeOut{Type: t.Type, TypeID: t.ID, ImgURL: h.Media.MediaURL(t.Icon), MandatoryFields: fieldNames(t.MandatoryFields)}
}

func (h *WorkbookHandler) workbookOut(w model.Workbook) workbookOut {
    return workbookOut{
        ID:              w.ID,
        Name:            w.Name,
        TypeID:          w.WorkbookTypeID,
        Type:            w.Type,
        ImgURL:          h.Media.MediaURL(w.Icon),
        MandatoryFields: fieldNames(w.MandatoryFields),
    }
}

// ListTypes is public: every workbook type plus the field vocabulary a
// client may choose mandatory fields from.
func (h *WorkbookHandler) ListTypes(c echo.Context) error {
    types, err := h.Svc.ListTypes(c.Request().Context())
    if err != nil {
        return failErr(c, h.Logger, "workbook", err)
    }
    out := make([]wbTypeOut, 0, len(types))
    for _, t := range types {
        out = append(out, h.typeOut(t))
    }
    return respond(c, http.StatusOK, "", echo.Map{
        "wb_types":         out,
        "mandatory_fields": visitor.VocabularyNames(),
    })
}

// CreateType (ADMIN) registers a new workbook type.
func (h *WorkbookHandler) CreateType(c echo.Context) error {
    var req createTypeReq
    if ok, err := bindValid(c, &req); !ok {
        return err
    }
    t, err := h.Svc.CreateType(c.Request().Context(), req.Type, req.Icon, req.MandatoryFields)
    if err != nil {
        return failErr(c, h.Logger, "workbook", err)
    }
    return respond(c, http.StatusCreated, "Workbook type created", h.typeOut(*t))
}

// UpdateTypeFields replaces a type's mandatory fields.
func (h *WorkbookHandler) UpdateTypeFields(c echo.Context) error {
    id, err := strconv.ParseUint(c.Param("id"), 10, 64)
    if err != nil || id == 0 {
        return invalid(c, "id: invalid")
    }
    var req updateFieldsReq
    if ok, err := bindValid(c, &req); !ok {
        return err
    }
    schema, err := h.Svc.UpdateTypeFields(c.Request().Context(), id, req.MandatoryFields)
    if err != nil {
        return failErr(c, h.Logger, "workbook", err)
    }
    return respond(c, http.StatusOK, "Mandatory fields updated", echo.Map{
        "wb_type_id":       id,
        "mandatory_fields": fieldNames(schema),
    })
}

// ListWorkbooks returns the member's workbooks.
func (h *WorkbookHandler) ListWorkbooks(c echo.Context) error {
    memberID, ok := middleware.MemberID(c)
    if !ok {
        return fail(c, visitor.CodeUnauthorized, "unauthorized")
    }
    list, err := h.Svc.ListWorkbooks(c.Request().Context(), memberID)
    if err != nil {
        return failErr(c, h.Logger, "workbook", err)
    }
    out := make([]workbookOut, 0, len(list))
    for _, w := range list {
        out = append(out, h.workbookOut(w))
    }
    return respond(c, http.StatusOK, "", out)
}

// CreateWorkbook opens a workbook of a type for the member.
func (h *WorkbookHandler) CreateWorkbook(c echo.Context) error {
    memberID, ok := middleware.MemberID(c)
    if !ok {
        return fail(c, visitor.CodeUnauthorized, "unauthorized")
    }
    var req createWorkbookReq
    if ok, err := bindValid(c, &req); !ok {
        return err
    }
    w, err := h.Svc.CreateWorkbook(c.Request().Context(), memberID, service.CreateWorkbookInput{
        Name:            req.Name,
        TypeID:          req.TypeID,
        MandatoryFields: req.MandatoryFields,
    })
    if err != nil {
        return failErr(c, h.Logger, "workbook", err)
    }
    return respond(c, http.StatusCreated, "Workbook created", h.workbookOut(*w))
}
