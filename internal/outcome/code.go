package outcome

// Code is the closed set of outcome codes every operation funnels
// through. The serialized names SUCCESS and FAILURE are a stable
// contract consumed by callers.
type Code int

const (
	Success Code = iota
	Failure
	NoContent
	Unauthorized
	BadRequest
	NotFound
	InternalServerError
)

type codeInfo struct {
	name    string
	status  int
	message string
}

var codes = map[Code]codeInfo{
	Success:             {"SUCCESS", 200, "OK"},
	Failure:             {"FAILURE", 422, "Failed"},
	NoContent:           {"NO_CONTENT", 204, "No Content Found"},
	Unauthorized:        {"UNAUTHORIZED", 401, "Unauthorized Access"},
	BadRequest:          {"BAD_REQUEST", 400, "Invalid Request"},
	NotFound:            {"NOT_FOUND", 404, "Not Found"},
	InternalServerError: {"INTERNAL_SERVER_ERROR", 500, "Internal Server Error"},
}

func (c Code) String() string { return codes[c].name }

// Status is the HTTP-like numeric status carried by the code.
func (c Code) Status() int { return codes[c].status }

// Message is the human-readable text carried by the code.
func (c Code) Message() string { return codes[c].message }

// ByStatus looks up a code by its numeric status. The second return
// is false when no code carries that status.
func ByStatus(status int) (Code, bool) {
	for c, info := range codes {
		if info.status == status {
			return c, true
		}
	}
	return 0, false
}
