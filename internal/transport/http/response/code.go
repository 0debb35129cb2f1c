package response

// 业务错误码（直接基于 HTTP 语义）
const (
	CodeOK              = 0
	CodeBadRequest      = 400
	CodeUnauthorized    = 401
	CodeForbidden       = 403
	CodeNotFound        = 404
	CodeConflict        = 409
	CodeTooLarge        = 413
	CodeUnprocessable   = 422
	CodeTooManyRequests = 429
	CodeServerError     = 500
	CodeUnavailable     = 503
	CodeTimeout         = 504
)

// reason 与客户端约定的机器可读错误类别
const (
	ReasonValidation          = "validation"
	ReasonAuth                = "auth"
	ReasonForbidden           = "forbidden"
	ReasonNotFound            = "not_found"
	ReasonInvalidTransition   = "invalid_transition"
	ReasonForbiddenTransition = "forbidden_transition"
	ReasonAlreadyMatched      = "already_matched"
	ReasonConflict            = "conflict"
	ReasonNotEligible         = "not_eligible"
	ReasonRateLimited         = "rate_limited"
	ReasonTimeout             = "timeout"
	ReasonBusy                = "busy"
	ReasonTooLarge            = "too_large"
	ReasonInternal            = "internal"
)

// CodeMsgMap 用于集中管理 code - msg
var CodeMsgMap = map[int]string{
	CodeOK:              "OK",
	CodeBadRequest:      "Bad Request",
	CodeUnauthorized:    "Unauthorized",
	CodeForbidden:       "Forbidden",
	CodeNotFound:        "Not Found",
	CodeConflict:        "Conflict",
	CodeTooLarge:        "Request Entity Too Large",
	CodeUnprocessable:   "Not Eligible",
	CodeTooManyRequests: "Too Many Requests",
	CodeServerError:     "Something went wrong. Please try again later.",
	CodeUnavailable:     "Server Busy",
	CodeTimeout:         "Request Timeout",
}
