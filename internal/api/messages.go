package api

import "github.com/docuvend/download-gate/internal/access"

// reasonMessage maps a denial reason to the wording shown to buyers. This
// text is presentation only; clients branch on the structured reason field,
// never on these strings.
func reasonMessage(reason access.Reason) string {
	switch reason {
	case access.ReasonInvalidToken:
		return "This download link is not valid. Make sure you copied the full link from your purchase email."
	case access.ReasonEmailMismatch:
		return "This email address is not authorized for this download. Enter the email used for your purchase."
	case access.ReasonExpired:
		return "This download link has expired. You can request new links for your order."
	case access.ReasonQuotaExceeded:
		return "The download limit for this link has been reached."
	case access.ReasonSystemError:
		return "A system error occurred while verifying your access. Please try again."
	default:
		return "Access denied."
	}
}
