package artifact

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/rushteam/ocoprec/core"
)

func notFound(kind, path string, cause error) error {
	return core.WrapDomainError(core.ModuleArtifact, core.ErrorCodeArtifactNotFound,
		fmt.Sprintf("%s file not found: %s", kind, path), cause)
}

func invalid(kind, path string, cause error) error {
	return core.WrapDomainError(core.ModuleArtifact, core.ErrorCodeArtifactInvalid,
		fmt.Sprintf("%s file is invalid: %s", kind, path), cause)
}

// readFile 读取产物文件，文件不存在时返回 ARTIFACT_NOT_FOUND。
func readFile(kind, path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, notFound(kind, path, err)
		}
		return nil, invalid(kind, path, err)
	}
	return data, nil
}
