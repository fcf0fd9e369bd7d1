package dpkgsource

import "errors"

// ErrEmptyCache is returned by NewStatusFileCache when the status file
// contains no package whose Status field's third word is "installed".
var ErrEmptyCache = errors.New("dpkgsource: status database has no installed packages")
