package constants

// ContextKeyUserID is the gin context key holding the authenticated user id.
const ContextKeyUserID = "user_id"

// Pagination
const (
	MinPageSize     = 1
	DefaultPage     = 1
	DefaultPageSize = 10
	MaxPageSize     = 100
)

// Task field bounds, kept in step with the binding tags on task requests
const (
	MaxTitleLength       = 200
	MaxDescriptionLength = 1000
)

// MaxAIGeneratedTasks caps the number of suggestions returned from one request.
const MaxAIGeneratedTasks = 20

// BearerScheme is the only accepted Authorization scheme.
const BearerScheme = "Bearer"
