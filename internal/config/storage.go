package config

type Storage struct {
	SQLite    *SQLiteStorage    `mapstructure:"sqlite,omitempty"`
	LocalFile *LocalFileStorage `mapstructure:"local,omitempty"`
}

type SQLiteStorage struct {
	Path string `mapstructure:"path,omitempty"`
}

type LocalFileStorage struct {
	Path string `mapstructure:"path,omitempty"`
}
