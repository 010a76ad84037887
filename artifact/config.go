package artifact

import "path/filepath"

// Config 描述离线产物的位置。文件名为空时使用 DefaultConfig 中的名字，
// 相对路径基于 Dir 解析。
type Config struct {
	Dir             string `koanf:"dir" yaml:"dir"`
	MetadataFile    string `koanf:"metadata_file" yaml:"metadata_file"`
	PrecomputedFile string `koanf:"precomputed_file" yaml:"precomputed_file"`
	MatrixFile      string `koanf:"matrix_file" yaml:"matrix_file"`
	IndexFile       string `koanf:"index_file" yaml:"index_file"`
	TableFile       string `koanf:"table_file" yaml:"table_file"`
}

// DefaultConfig 返回离线训练管线的默认产物文件名。
func DefaultConfig() Config {
	return Config{
		Dir:             "python_recommender_artifacts",
		MetadataFile:    "product_id_name_map_v2_adv.json",
		PrecomputedFile: "precomputed_recommendations_v2_raw_adv.json",
		MatrixFile:      "cosine_similarity_matrix_v2_adv.npy",
		IndexFile:       "product_indices_map_v2_adv.json",
		TableFile:       "buudien_ocop_products_detailed_v2_rerun.csv",
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.MetadataFile == "" {
		c.MetadataFile = d.MetadataFile
	}
	if c.PrecomputedFile == "" {
		c.PrecomputedFile = d.PrecomputedFile
	}
	if c.MatrixFile == "" {
		c.MatrixFile = d.MatrixFile
	}
	if c.IndexFile == "" {
		c.IndexFile = d.IndexFile
	}
	if c.TableFile == "" {
		c.TableFile = d.TableFile
	}
	return c
}

func (c Config) path(name string) string {
	if filepath.IsAbs(name) || c.Dir == "" {
		return name
	}
	return filepath.Join(c.Dir, name)
}

func (c Config) MetadataPath() string    { return c.path(c.MetadataFile) }
func (c Config) PrecomputedPath() string { return c.path(c.PrecomputedFile) }
func (c Config) MatrixPath() string      { return c.path(c.MatrixFile) }
func (c Config) IndexPath() string       { return c.path(c.IndexFile) }
func (c Config) TablePath() string       { return c.path(c.TableFile) }
