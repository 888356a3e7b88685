package errs

// Error codes for the messaging gateway. 11xx are connection-scoped,
// 12xx validation, 13xx persistence.
const (
	CodeUnauthorized        = 1101
	CodeNotConnected        = 1102
	CodeProtocolViolation   = 1103
	CodeUnknownRecipient    = 1201
	CodeMessageTooLarge     = 1202
	CodeEmptyBody           = 1203
	CodeUnknownConversation = 1204
	CodePersistenceTimeout  = 1301
	CodePersistenceFailure  = 1302
)

var (
	ErrUnauthorized        = NewCodeError(CodeUnauthorized, "unauthorized")
	ErrNotConnected        = NewCodeError(CodeNotConnected, "not_connected")
	ErrProtocolViolation   = NewCodeError(CodeProtocolViolation, "protocol_violation")
	ErrUnknownRecipient    = NewCodeError(CodeUnknownRecipient, "unknown_recipient")
	ErrMessageTooLarge     = NewCodeError(CodeMessageTooLarge, "message_too_large")
	ErrEmptyBody           = NewCodeError(CodeEmptyBody, "empty_body")
	ErrUnknownConversation = NewCodeError(CodeUnknownConversation, "unknown_conversation")
	ErrPersistenceTimeout  = NewCodeError(CodePersistenceTimeout, "persistence_timeout")
	ErrPersistenceFailure  = NewCodeError(CodePersistenceFailure, "persistence_failure")
)
