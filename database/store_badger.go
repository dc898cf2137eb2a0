package database

import (
	"io"
	"os"
	"runtime"

	"github.com/dgraph-io/badger/v4"
	"github.com/pkg/errors"
)

// Open 打开结论存储
//
// 参数:
//   - dir: 数据库目录，为空时使用内存数据库
//
// 返回值:
//   - *Store: 存储实例
//   - error: 创建目录或打开数据库失败时返回错误
func Open(dir string) (*Store, error) {
	var options badger.Options
	if dir == "" {
		options = badger.DefaultOptions("").WithInMemory(true)
	} else {
		// 确保数据库目录已经存在
		if err := os.MkdirAll(dir, 0755); err != nil {
			logger.Errorf("创建数据库目录失败: %v", err)
			return nil, errors.Wrapf(err, "create database dir %s", dir)
		}
		options = badger.DefaultOptions(dir).
			WithSyncWrites(true).
			WithNumVersionsToKeep(1)
	}
	// badger 自带的日志过于冗长
	options = options.WithLogger(nil)

	db, err := badger.Open(options)
	if err != nil {
		logger.Errorf("打开数据库失败: %v", err)
		return nil, errors.Wrap(err, "open badger")
	}
	return &Store{db: db}, nil
}

// Close 关闭数据库
func (s *Store) Close() error {
	return s.db.Close()
}

// Clear 清空数据库中所有结论
func (s *Store) Clear() error {
	if err := s.db.DropPrefix(verdictPrefix); err != nil {
		logger.Errorf("清空数据库失败: %v", err)
		return errors.Wrap(err, "clear verdicts")
	}
	return nil
}

// RunValueLogGC 执行 value log 垃圾回收直到没有可回收的数据
//
// 参数:
//   - ratio float64: GC触发阈值(0.0-1.0)
//
// 返回值:
//   - error: 如果GC过程中发生错误，返回错误信息
func (s *Store) RunValueLogGC(ratio float64) error {
	for {
		err := s.db.RunValueLogGC(ratio)

		// 当没有更多的数据需要清理时
		if errors.Is(err, badger.ErrNoRewrite) {
			runtime.GC()
			return nil
		}
		// 内存数据库没有 value log
		if errors.Is(err, badger.ErrGCInMemoryMode) {
			return nil
		}
		if err != nil {
			logger.Errorf("值日志垃圾回收失败: %v", err)
			return errors.Wrap(err, "value log gc")
		}
	}
}

// Backup 把全部结论写入 w
func (s *Store) Backup(w io.Writer) error {
	if _, err := s.db.Backup(w, 0); err != nil {
		logger.Errorf("备份数据库失败: %v", err)
		return errors.Wrap(err, "backup")
	}
	return nil
}

// Restore 从 Backup 生成的数据恢复结论
func (s *Store) Restore(r io.Reader) error {
	if err := s.db.Load(r, 256); err != nil {
		logger.Errorf("恢复数据库失败: %v", err)
		return errors.Wrap(err, "restore")
	}
	return nil
}
