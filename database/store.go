// Package database 在 BadgerDB 上持久化脚本执行的结论。
package database

import (
	"context"
	"encoding/hex"
	"encoding/json"

	"github.com/dgraph-io/badger/v4"
	logging "github.com/dep2p/log"
	"github.com/pkg/errors"
	"go.uber.org/fx"

	"github.com/tomthoros/dash/config"
)

var logger = logging.Logger("database")

// 结论键的前缀
var verdictPrefix = []byte("verdict/")

// ErrNotFound 表示存储中没有对应的结论
var ErrNotFound = errors.New("verdict not found")

// Verdict 是保存在存储中的执行结论
type Verdict struct {
	Success bool     `json:"success"`         // 是否成功
	Tag     string   `json:"tag"`             // 错误标签，成功时为 "OK"
	Stack   []string `json:"stack,omitempty"` // 十六进制编码的最终栈
}

// EncodeStack 把栈编码为十六进制字符串列表
func EncodeStack(stack [][]byte) []string {
	if len(stack) == 0 {
		return nil
	}
	out := make([]string, len(stack))
	for i, item := range stack {
		out[i] = hex.EncodeToString(item)
	}
	return out
}

// DecodeStack 把十六进制字符串列表解码为栈
func DecodeStack(stack []string) ([][]byte, error) {
	if len(stack) == 0 {
		return nil, nil
	}
	out := make([][]byte, len(stack))
	for i, s := range stack {
		b, err := hex.DecodeString(s)
		if err != nil {
			return nil, errors.Wrapf(err, "decode stack item %d", i)
		}
		out[i] = b
	}
	return out, nil
}

// Store 是结论存储，可以并发使用
type Store struct {
	db *badger.DB
}

// verdictKey 返回结论在数据库中的键
func verdictKey(key string) []byte {
	k := make([]byte, 0, len(verdictPrefix)+len(key))
	k = append(k, verdictPrefix...)
	return append(k, key...)
}

// Put 保存结论
//
// 参数:
//   - key: 执行的缓存键
//   - v: 结论
//
// 返回值:
//   - error: 写入失败时返回错误
func (s *Store) Put(key string, v *Verdict) error {
	value, err := json.Marshal(v)
	if err != nil {
		return errors.Wrap(err, "encode verdict")
	}
	err = s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(verdictKey(key), value)
	})
	if err != nil {
		logger.Errorf("写入结论失败: %v", err)
		return errors.Wrap(err, "put verdict")
	}
	return nil
}

// Get 读取结论，不存在时返回 ErrNotFound
func (s *Store) Get(key string) (*Verdict, error) {
	var value []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(verdictKey(key))
		if err != nil {
			return err
		}
		value, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "get verdict")
	}

	var v Verdict
	if err := json.Unmarshal(value, &v); err != nil {
		return nil, errors.Wrap(err, "decode verdict")
	}
	return &v, nil
}

// Delete 删除结论，不存在时不报错
func (s *Store) Delete(key string) error {
	err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(verdictKey(key))
	})
	return errors.Wrap(err, "delete verdict")
}

// Count 返回存储中的结论数量
func (s *Store) Count() (int, error) {
	n := 0
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = verdictPrefix
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			n++
		}
		return nil
	})
	if err != nil {
		return 0, errors.Wrap(err, "count verdicts")
	}
	return n, nil
}

// NewStoreInput 是 NewFxStore 的输入
type NewStoreInput struct {
	fx.In

	Opts *config.Options
}

// NewStoreOutput 是 NewFxStore 的输出
type NewStoreOutput struct {
	fx.Out

	Store *Store
}

// NewFxStore 为 fx 应用打开结论存储，并在停止时关闭
//
// 参数:
//   - lc fx.Lifecycle: 应用的生命周期管理器
//   - input NewStoreInput: 包含配置的输入结构体
//
// 返回值:
//   - out NewStoreOutput: 包含存储实例的输出结构体
//   - err error: 打开失败时返回错误
func NewFxStore(lc fx.Lifecycle, input NewStoreInput) (out NewStoreOutput, err error) {
	store, err := Open(input.Opts.GetDatabasePath())
	if err != nil {
		logger.Errorf("初始化结论存储失败: %v", err)
		return out, err
	}

	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			logger.Infof("关闭结论存储")
			return store.Close()
		},
	})

	out.Store = store
	return out, nil
}
