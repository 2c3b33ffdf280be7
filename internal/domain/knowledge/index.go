package knowledge

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	applog "krishisahay/internal/platform/log"
)

// Index 预计算好的 embedding 索引：文档列表与按相同顺序排列的
// 向量矩阵。由 cmd/indexer 离线生成，服务进程只读。
type Index struct {
	Model     string      `json:"model"`
	Dims      int         `json:"dims"`
	BuiltAt   time.Time   `json:"built_at"`
	Documents []Document  `json:"documents"`
	Vectors   [][]float32 `json:"vectors"`
}

// LoadIndex 从磁盘加载并校验索引文件。
func LoadIndex(path string) (*Index, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read index file %q: %w", path, err)
	}

	var idx Index
	if err := json.Unmarshal(data, &idx); err != nil {
		return nil, fmt.Errorf("parse index file %q: %w", path, err)
	}
	if err := idx.Validate(); err != nil {
		return nil, fmt.Errorf("index file %q: %w", path, err)
	}

	applog.Info("[Knowledge] Index loaded",
		"path", path,
		"documents", len(idx.Documents),
		"dims", idx.Dims,
		"model", idx.Model,
	)
	return &idx, nil
}

// Save 将索引写入磁盘。
func (idx *Index) Save(path string) error {
	if err := idx.Validate(); err != nil {
		return err
	}
	data, err := json.MarshalIndent(idx, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal index: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write index file %q: %w", path, err)
	}
	return nil
}

// Validate 校验文档与向量矩阵的一致性。
func (idx *Index) Validate() error {
	if len(idx.Documents) == 0 {
		return fmt.Errorf("index has no documents")
	}
	if len(idx.Vectors) != len(idx.Documents) {
		return fmt.Errorf("vector count %d does not match document count %d",
			len(idx.Vectors), len(idx.Documents))
	}
	for i, v := range idx.Vectors {
		if len(v) == 0 {
			return fmt.Errorf("document %d has an empty vector", i)
		}
		if idx.Dims > 0 && len(v) != idx.Dims {
			return fmt.Errorf("document %d vector has %d dims, want %d", i, len(v), idx.Dims)
		}
	}
	return nil
}

// Size 返回索引中的文档数。
func (idx *Index) Size() int {
	return len(idx.Documents)
}
