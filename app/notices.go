package app

import (
	"errors"

	"github.com/ieg-tools/projcodes/domain"
)

// soften converts workflow errors into a warning notice. Soft errors leave
// the caller with no result and no error; every other error is returned.
func soften(notices []domain.Notice, err error) ([]domain.Notice, error) {
	if err == nil || !domain.IsSoft(err) {
		return notices, err
	}
	return append(notices, domain.WarningNotice(softMessage(err))), nil
}

// softMessage is the user-facing text of a soft error without its code prefix
func softMessage(err error) string {
	var de domain.DomainError
	if !errors.As(err, &de) {
		return err.Error()
	}
	if de.Cause != nil && de.Code == domain.ErrCodeResource {
		return de.Message + ": " + de.Cause.Error()
	}
	return de.Message
}

// publish forwards notices to the sink and returns them
func publish(sink domain.NoticeSink, notices []domain.Notice) []domain.Notice {
	if sink != nil {
		for _, n := range notices {
			sink.Notify(n)
		}
	}
	return notices
}
