package handler

import (
    "net/http"

    "github.com/labstack/echo/v4"
    "github.com/sirupsen/logrus"

    "github.com/iliyamo/visitor-register/internal/config"
    "github.com/iliyamo/visitor-register/internal/visitor"
)

const genericMessage = "Something went wrong, Please try again later."

// Envelope is the body of every domain response.  Status 0 is success.
type Envelope struct {
    Status   visitor.Code `json:"status"`
    Message  string       `json:"message"`
    Response any          `json:"response"`
}

func respond(c echo.Context, httpStatus int, msg string, data any) error {
    return c.JSON(httpStatus, Envelope{Status: visitor.CodeSuccess, Message: msg, Response: data})
}

func fail(c echo.Context, code visitor.Code, msg string) error {
    return c.JSON(code.HTTPStatus(), Envelope{Status: code, Message: msg})
}

func invalid(c echo.Context, msg string) error {
    return fail(c, visitor.CodeInvalidField, msg)
}

// failErr writes a classified failure as its envelope.  Anything else is
// logged and reported as a generic error without its text.
func failErr(c echo.Context, logger logrus.FieldLogger, module string, err error) error {
    ve, ok := visitor.AsError(err)
    if !ok {
        config.LogError(logger, module, c.Path(), c.Request().Method, nil, err)
        return fail(c, visitor.CodeGenericError, genericMessage)
    }
    httpStatus := ve.Code().HTTPStatus()
    if ve.Kind == visitor.KindEmptySchema {
        // the caller's field list was bad even though the catalog code is generic
        httpStatus = http.StatusBadRequest
    }
    return c.JSON(httpStatus, Envelope{Status: ve.Code(), Message: ve.Message})
}
