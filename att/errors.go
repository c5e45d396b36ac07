package att

// ErrorCode is the one-byte status carried by an ErrorRsp PDU.
type ErrorCode uint8

const (
	ErrInvalidHandle               ErrorCode = 0x01
	ErrReadNotPermitted             ErrorCode = 0x02
	ErrWriteNotPermitted            ErrorCode = 0x03
	ErrInvalidPDU                   ErrorCode = 0x04
	ErrInsufficientAuthentication   ErrorCode = 0x05
	ErrRequestNotSupported          ErrorCode = 0x06
	ErrInvalidOffset                ErrorCode = 0x07
	ErrInsufficientAuthorization    ErrorCode = 0x08
	ErrPrepareQueueFull             ErrorCode = 0x09
	ErrAttributeNotFound            ErrorCode = 0x0A
	ErrAttributeNotLong             ErrorCode = 0x0B
	ErrInsufficientEncryptionKeySize ErrorCode = 0x0C
	ErrInvalidAttributeValueLength  ErrorCode = 0x0D
	ErrUnlikelyError                ErrorCode = 0x0E
	ErrInsufficientEncryption       ErrorCode = 0x0F
	ErrUnsupportedGroupType         ErrorCode = 0x10
	ErrInsufficientResources        ErrorCode = 0x11
	ErrDbOutOfSync                  ErrorCode = 0x12
	ErrForbiddenValue               ErrorCode = 0x13
)

// IsApplicationError reports whether code falls in the application-defined
// range [0x80, 0x9F].
func (c ErrorCode) IsApplicationError() bool { return c >= 0x80 && c <= 0x9F }

// IsCommonProfileAndServicesError reports whether code falls in the
// common-profile-and-services range [0xE0, 0xFF].
func (c ErrorCode) IsCommonProfileAndServicesError() bool { return c >= 0xE0 && c <= 0xFF }

func (c ErrorCode) String() string {
	switch c {
	case ErrInvalidHandle:
		return "invalid-handle"
	case ErrReadNotPermitted:
		return "no-read-perm"
	case ErrWriteNotPermitted:
		return "no-write-perm"
	case ErrInvalidPDU:
		return "invalid-pdu"
	case ErrInsufficientAuthentication:
		return "insuff-authentication"
	case ErrRequestNotSupported:
		return "unsupported-request"
	case ErrInvalidOffset:
		return "invalid-offset"
	case ErrInsufficientAuthorization:
		return "insuff-authorization"
	case ErrPrepareQueueFull:
		return "prepare-queue-full"
	case ErrAttributeNotFound:
		return "attribute-not-found"
	case ErrAttributeNotLong:
		return "attribute-not-long"
	case ErrInsufficientEncryptionKeySize:
		return "insuff-encryption-key-size"
	case ErrInvalidAttributeValueLength:
		return "invalid-attribute-value-len"
	case ErrUnlikelyError:
		return "unlikely-error"
	case ErrInsufficientEncryption:
		return "insuff-encryption"
	case ErrUnsupportedGroupType:
		return "unsupported-group-type"
	case ErrInsufficientResources:
		return "insufficient-resources"
	case ErrDbOutOfSync:
		return "db-out-of-sync"
	case ErrForbiddenValue:
		return "forbidden-value"
	default:
		if c.IsApplicationError() {
			return "application-error"
		}
		if c.IsCommonProfileAndServicesError() {
			return "common-profile-and-services-error"
		}
		return "unknown-att-error"
	}
}
