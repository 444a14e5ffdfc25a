package submission

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/civiplan/submission-service/internal/domain/validation"
)

// MaxSequence is the hard cap on submissions sharing one DRM number: the
// sequence occupies the two trailing digits of the submission number.
const MaxSequence = 99

// NextNumber generates the submission number for a new submission under the
// given DRM number: the DRM number followed by a zero-padded sequence one
// past the highest sequence already taken. Exceeding the cap is a forbidden
// business condition, not a format error.
func NextNumber(drmNumber string, taken []string) validation.Outcome[string] {
	highest := 0
	for _, number := range taken {
		if !strings.HasPrefix(number, drmNumber) {
			continue
		}
		seq, err := strconv.Atoi(number[len(drmNumber):])
		if err != nil {
			continue
		}
		if seq > highest {
			highest = seq
		}
	}
	if highest >= MaxSequence {
		return validation.FailedError[string]("submissionNumber", validation.CodeForbidden,
			fmt.Sprintf("the maximum of %d submissions for drmNumber %s has been reached", MaxSequence, drmNumber))
	}
	return validation.OK(fmt.Sprintf("%s%02d", drmNumber, highest+1))
}
