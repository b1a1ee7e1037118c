package handler

import (
    "encoding/json"
    "errors"
    "io"
    "mime/multipart"
    "net/http"
    "strconv"
    "strings"
    "time"

    "github.com/labstack/echo/v4"
    "github.com/sirupsen/logrus"

    "github.com/iliyamo/visitor-register/internal/export"
    "github.com/iliyamo/visitor-register/internal/middleware"
    "github.com/iliyamo/visitor-register/internal/service"
    "github.com/iliyamo/visitor-register/internal/visitor"
)

// VisitorHandler serves visitor registration and the read endpoints.
type VisitorHandler struct {
    Svc            *service.VisitorService
    MaxUploadBytes int64
    Logger         logrus.FieldLogger
}

func NewVisitorHandler(svc *service.VisitorService, maxUploadBytes int64, logger logrus.FieldLogger) *VisitorHandler {
    return &VisitorHandler{Svc: svc, MaxUploadBytes: maxUploadBytes, Logger: logger}
}

// Register accepts either multipart (a "params" JSON part plus optional
// "photo"/"signature" files) or a plain JSON body without attachments.
func (h *VisitorHandler) Register(c echo.Context) error {
    memberID, ok := middleware.MemberID(c)
    if !ok {
        return fail(c, visitor.CodeUnauthorized, "unauthorized")
    }
    if h.MaxUploadBytes > 0 {
        c.Request().Body = http.MaxBytesReader(c.Response(), c.Request().Body, h.MaxUploadBytes)
    }

    var (
        raw         map[string]json.RawMessage
        attachments visitor.Attachments
    )
    if strings.HasPrefix(c.Request().Header.Get(echo.HeaderContentType), echo.MIMEMultipartForm) {
        form, err := c.MultipartForm()
        if err != nil {
            return invalid(c, uploadMessage(err))
        }
        params := form.Value["params"]
        if len(params) == 0 || json.Unmarshal([]byte(params[0]), &raw) != nil {
            return invalid(c, "params: invalid JSON")
        }
        attachments, err = readAttachments(form)
        if err != nil {
            return invalid(c, uploadMessage(err))
        }
    } else if err := json.NewDecoder(c.Request().Body).Decode(&raw); err != nil {
        return invalid(c, "Invalid request body")
    }

    wbID, ok := uintParam(raw["wb_id"])
    if !ok {
        return invalid(c, "wb_id: required")
    }
    v, err := h.Svc.Register(c.Request().Context(), memberID, wbID, visitor.DecodeFieldMap(raw), attachments)
    if err != nil {
        return failErr(c, h.Logger, "visitor", err)
    }
    return respond(c, http.StatusCreated, "Visitor registered", echo.Map{"visitor_id": v.ID, "wb_id": v.WorkbookID})
}

// List returns the projected active visitors of ?wb_id.
func (h *VisitorHandler) List(c echo.Context) error {
    memberID, ok := middleware.MemberID(c)
    if !ok {
        return fail(c, visitor.CodeUnauthorized, "unauthorized")
    }
    wbID, err := strconv.ParseUint(c.QueryParam("wb_id"), 10, 64)
    if err != nil || wbID == 0 {
        return invalid(c, "wb_id: required")
    }
    rows, err := h.Svc.List(c.Request().Context(), memberID, wbID)
    if err != nil {
        return failErr(c, h.Logger, "visitor", err)
    }
    return respond(c, http.StatusOK, "", rows)
}

// Search filters the member's visitors.  in_from and out_to use the
// YYYYMMDD HH:MM:SS format and are inclusive.
func (h *VisitorHandler) Search(c echo.Context) error {
    memberID, ok := middleware.MemberID(c)
    if !ok {
        return fail(c, visitor.CodeUnauthorized, "unauthorized")
    }
    in := service.SearchInput{
        Name:             strings.TrimSpace(c.QueryParam("name")),
        MobileNo:         strings.TrimSpace(c.QueryParam("mobile_no")),
        VehicleNo:        strings.TrimSpace(c.QueryParam("vehicle_no")),
        FromPlace:        strings.TrimSpace(c.QueryParam("from_place")),
        DestinationPlace: strings.TrimSpace(c.QueryParam("destination_place")),
    }
    if s := c.QueryParam("wb_id"); s != "" {
        id, err := strconv.ParseUint(s, 10, 64)
        if err != nil {
            return invalid(c, "wb_id: invalid")
        }
        in.WorkbookID = id
    }
    var err error
    if in.InFrom, err = queryTime(c, "in_from"); err != nil {
        return failErr(c, h.Logger, "visitor", err)
    }
    if in.OutTo, err = queryTime(c, "out_to"); err != nil {
        return failErr(c, h.Logger, "visitor", err)
    }

    rows, err := h.Svc.Search(c.Request().Context(), memberID, in)
    if err != nil {
        return failErr(c, h.Logger, "visitor", err)
    }
    return respond(c, http.StatusOK, "", rows)
}

// Names suggests visitor names for ?name.
func (h *VisitorHandler) Names(c echo.Context) error {
    memberID, ok := middleware.MemberID(c)
    if !ok {
        return fail(c, visitor.CodeUnauthorized, "unauthorized")
    }
    prefix := strings.TrimSpace(c.QueryParam("name"))
    if prefix == "" {
        return invalid(c, "name: required")
    }
    names, err := h.Svc.Names(c.Request().Context(), memberID, prefix)
    if err != nil {
        return failErr(c, h.Logger, "visitor", err)
    }
    return respond(c, http.StatusOK, "", names)
}

// Export streams the workbook's visitors as an XLSX attachment.
func (h *VisitorHandler) Export(c echo.Context) error {
    memberID, ok := middleware.MemberID(c)
    if !ok {
        return fail(c, visitor.CodeUnauthorized, "unauthorized")
    }
    wbID, err := strconv.ParseUint(c.QueryParam("wb_id"), 10, 64)
    if err != nil || wbID == 0 {
        return invalid(c, "wb_id: required")
    }
    data, name, err := h.Svc.Export(c.Request().Context(), memberID, wbID)
    if err != nil {
        return failErr(c, h.Logger, "visitor", err)
    }
    c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="`+name+`"`)
    return c.Blob(http.StatusOK, export.ContentType, data)
}

func readAttachments(form *multipart.Form) (visitor.Attachments, error) {
    out := visitor.Attachments{}
    for _, f := range []visitor.Field{visitor.FieldPhoto, visitor.FieldSignature} {
        files := form.File[string(f)]
        if len(files) == 0 {
            continue
        }
        fh, err := files[0].Open()
        if err != nil {
            return nil, err
        }
        data, err := io.ReadAll(fh)
        fh.Close()
        if err != nil {
            return nil, err
        }
        out[f] = data
    }
    return out, nil
}

func uploadMessage(err error) string {
    var tooLarge *http.MaxBytesError
    if errors.As(err, &tooLarge) {
        return "Upload too large"
    }
    return "Invalid multipart form"
}

// uintParam accepts wb_id as a JSON number or numeric string.
func uintParam(raw json.RawMessage) (uint64, bool) {
    if len(raw) == 0 {
        return 0, false
    }
    s := string(raw)
    var str string
    if json.Unmarshal(raw, &str) == nil {
        s = str
    }
    n, err := strconv.ParseUint(strings.TrimSpace(s), 10, 64)
    return n, err == nil && n > 0
}

func queryTime(c echo.Context, name string) (*time.Time, error) {
    s := strings.TrimSpace(c.QueryParam(name))
    if s == "" {
        return nil, nil
    }
    t, err := time.Parse(visitor.TimestampLayout, s)
    if err != nil {
        return nil, visitor.ErrInvalidTimestamp(visitor.Field(name), s, err)
    }
    return &t, nil
}
