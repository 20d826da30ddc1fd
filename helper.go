package msglog

import (
	stderrs "errors"
	"strings"

	smerrors "github.com/Station-Manager/errors"
)

const maxErrorChainDepth = 50

// buildErrorChain walks err's causes and returns:
//   - chain: messages from outermost to innermost
//   - ops: the operation of each link ("" for plain errors)
//   - root: the innermost message
//   - rootOp: the innermost operation
//
// DetailedError links are followed through Cause(), anything else through
// errors.Unwrap. Repeated plain messages stop the walk.
func buildErrorChain(err error) (chain []string, ops []string, root string, rootOp string) {
	seen := map[string]bool{}

	for depth := 0; err != nil && depth < maxErrorChainDepth; depth++ {
		if dErr, ok := smerrors.AsDetailedError(err); ok && dErr != nil {
			chain = append(chain, dErr.Error())
			ops = append(ops, string(dErr.Op()))
			err = dErr.Cause()
			continue
		}

		msg := err.Error()
		if seen[msg] {
			break
		}
		seen[msg] = true
		chain = append(chain, msg)
		ops = append(ops, emptyString)
		err = stderrs.Unwrap(err)
	}

	if n := len(chain); n > 0 {
		root = chain[n-1]
		rootOp = ops[n-1]
	}
	return
}

// joinChain renders a chain as "outer -> ... -> root".
func joinChain(chain []string) string {
	return strings.Join(chain, " -> ")
}
