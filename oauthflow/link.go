package oauthflow

import (
	"context"

	"github.com/modubooking/go-booking-client/api"
)

// User-facing messages for the known link failure categories.
const (
	linkSucceededMessage    = "외부 계정이 연결되었습니다"      // identity linked
	linkConflictMessage     = "이미 다른 계정에 연결된 외부 계정입니다" // linked elsewhere
	linkNotFoundMessage     = "연결할 계정을 찾을 수 없습니다"     // account missing
	linkUnauthorizedMessage = "세션이 만료되었습니다. 다시 로그인해주세요" // session expired mid-flow
)

// completeLink forwards code and state to the backend's link endpoint. Known
// failure signatures map to specific user-facing categories; anything else
// surfaces the raw backend message. Either way the user returns to the
// account page, never stranded on the callback screen.
func (f *Flow) completeLink(ctx context.Context, params CallbackParams) Result {
	err := f.api.OAuthLink(ctx, f.provider, params.Code, params.State)
	if err == nil {
		return Result{Route: RouteMyPage, Message: linkSucceededMessage}
	}

	message := linkFailureMessage(err)
	f.logger.Warn().Err(err).Msg("link completion failed")
	return Result{Route: withError(RouteMyPage, message), Message: message}
}

func linkFailureMessage(err error) string {
	switch api.KindOf(err) {
	case api.KindConflict:
		return linkConflictMessage
	case api.KindNotFound:
		return linkNotFoundMessage
	case api.KindUnauthorized:
		return linkUnauthorizedMessage
	default:
		return api.MessageOf(err)
	}
}
