package script

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// 测试asBool函数
func TestAsBool(t *testing.T) {
	tests := []struct {
		in   []byte
		want bool
	}{
		{nil, false},
		{[]byte{}, false},
		{[]byte{0x00}, false},
		{[]byte{0x00, 0x00, 0x00}, false},
		{[]byte{0x80}, false},
		{[]byte{0x00, 0x00, 0x80}, false},
		{[]byte{0x01}, true},
		{[]byte{0x00, 0x80, 0x00}, true},
		{[]byte{0x80, 0x00}, true},
		{[]byte{0x00, 0x00, 0x81}, true},
		// 布尔解释没有长度限制
		{append(make([]byte, 100), 0x01), true},
		{append(make([]byte, 100), 0x80), false},
	}

	for _, test := range tests {
		assert.Equal(t, test.want, asBool(test.in), "in %x", test.in)
	}
	assert.Equal(t, []byte{1}, fromBool(true))
	assert.Empty(t, fromBool(false))
}

// 测试栈的各项操作
func TestStack(t *testing.T) {
	tests := []struct {
		name      string
		before    [][]byte
		operation func(*stack) error
		code      ErrorCode
		after     [][]byte
	}{
		{
			"noop",
			[][]byte{{1}, {2}, {3}},
			func(s *stack) error { return nil },
			ErrOK,
			[][]byte{{1}, {2}, {3}},
		},
		{
			"peek underflow (byte)",
			[][]byte{{1}, {2}, {3}},
			func(s *stack) error {
				_, err := s.PeekByteArray(5)
				return err
			},
			ErrInvalidStackOperation,
			nil,
		},
		{
			"pop",
			[][]byte{{1}, {2}, {3}},
			func(s *stack) error {
				val, err := s.PopByteArray()
				if err != nil {
					return err
				}
				if val[0] != 3 {
					return scriptError(ErrUnknown, "wrong value")
				}
				return nil
			},
			ErrOK,
			[][]byte{{1}, {2}},
		},
		{
			"pop everything",
			[][]byte{{1}, {2}, {3}},
			func(s *stack) error {
				for i := 0; i < 3; i++ {
					if _, err := s.PopByteArray(); err != nil {
						return err
					}
				}
				return nil
			},
			ErrOK,
			[][]byte{},
		},
		{
			"pop underflow",
			[][]byte{{1}},
			func(s *stack) error {
				for i := 0; i < 2; i++ {
					if _, err := s.PopByteArray(); err != nil {
						return err
					}
				}
				return nil
			},
			ErrInvalidStackOperation,
			nil,
		},
		{
			"pop bool",
			[][]byte{nil},
			func(s *stack) error {
				val, err := s.PopBool()
				if err != nil {
					return err
				}
				if val {
					return scriptError(ErrUnknown, "unexpected true")
				}
				return nil
			},
			ErrOK,
			[][]byte{},
		},
		{
			"pop int non-minimal",
			[][]byte{{0x01, 0x00}},
			func(s *stack) error {
				s.verifyMinimalData = true
				_, err := s.PopInt()
				return err
			},
			ErrInvalidNumber,
			nil,
		},
		{
			"pop int too long",
			[][]byte{{0x01, 0x02, 0x03, 0x04, 0x05}},
			func(s *stack) error {
				_, err := s.PopInt()
				return err
			},
			ErrInvalidNumber,
			nil,
		},
		{
			"nip top",
			[][]byte{{1}, {2}, {3}},
			func(s *stack) error { return s.NipN(0) },
			ErrOK,
			[][]byte{{1}, {2}},
		},
		{
			"nip middle",
			[][]byte{{1}, {2}, {3}},
			func(s *stack) error { return s.NipN(1) },
			ErrOK,
			[][]byte{{1}, {3}},
		},
		{
			"nip bottom",
			[][]byte{{1}, {2}, {3}},
			func(s *stack) error { return s.NipN(2) },
			ErrOK,
			[][]byte{{2}, {3}},
		},
		{
			"nip too far",
			[][]byte{{1}, {2}, {3}},
			func(s *stack) error { return s.NipN(3) },
			ErrInvalidStackOperation,
			nil,
		},
		{
			"tuck",
			[][]byte{{1}, {2}},
			func(s *stack) error { return s.Tuck() },
			ErrOK,
			[][]byte{{2}, {1}, {2}},
		},
		{
			"tuck underflow",
			[][]byte{{1}},
			func(s *stack) error { return s.Tuck() },
			ErrInvalidStackOperation,
			nil,
		},
		{
			"drop 2",
			[][]byte{{1}, {2}, {3}},
			func(s *stack) error { return s.DropN(2) },
			ErrOK,
			[][]byte{{1}},
		},
		{
			"drop too many",
			[][]byte{{1}},
			func(s *stack) error { return s.DropN(2) },
			ErrInvalidStackOperation,
			nil,
		},
		{
			"dup 2",
			[][]byte{{1}, {2}},
			func(s *stack) error { return s.DupN(2) },
			ErrOK,
			[][]byte{{1}, {2}, {1}, {2}},
		},
		{
			"dup underflow",
			[][]byte{{1}},
			func(s *stack) error { return s.DupN(2) },
			ErrInvalidStackOperation,
			nil,
		},
		{
			"rot 1",
			[][]byte{{1}, {2}, {3}},
			func(s *stack) error { return s.RotN(1) },
			ErrOK,
			[][]byte{{2}, {3}, {1}},
		},
		{
			"rot 2",
			[][]byte{{1}, {2}, {3}, {4}, {5}, {6}},
			func(s *stack) error { return s.RotN(2) },
			ErrOK,
			[][]byte{{3}, {4}, {5}, {6}, {1}, {2}},
		},
		{
			"rot underflow",
			[][]byte{{1}, {2}},
			func(s *stack) error { return s.RotN(1) },
			ErrInvalidStackOperation,
			nil,
		},
		{
			"swap 1",
			[][]byte{{1}, {2}},
			func(s *stack) error { return s.SwapN(1) },
			ErrOK,
			[][]byte{{2}, {1}},
		},
		{
			"swap 2",
			[][]byte{{1}, {2}, {3}, {4}},
			func(s *stack) error { return s.SwapN(2) },
			ErrOK,
			[][]byte{{3}, {4}, {1}, {2}},
		},
		{
			"over 1",
			[][]byte{{1}, {2}, {3}},
			func(s *stack) error { return s.OverN(1) },
			ErrOK,
			[][]byte{{1}, {2}, {3}, {2}},
		},
		{
			"over 2",
			[][]byte{{1}, {2}, {3}, {4}},
			func(s *stack) error { return s.OverN(2) },
			ErrOK,
			[][]byte{{1}, {2}, {3}, {4}, {1}, {2}},
		},
		{
			"over underflow",
			[][]byte{{1}},
			func(s *stack) error { return s.OverN(1) },
			ErrInvalidStackOperation,
			nil,
		},
		{
			"pick 2",
			[][]byte{{1}, {2}, {3}},
			func(s *stack) error { return s.PickN(2) },
			ErrOK,
			[][]byte{{1}, {2}, {3}, {1}},
		},
		{
			"pick too far",
			[][]byte{{1}, {2}, {3}},
			func(s *stack) error { return s.PickN(3) },
			ErrInvalidStackOperation,
			nil,
		},
		{
			"roll 2",
			[][]byte{{1}, {2}, {3}},
			func(s *stack) error { return s.RollN(2) },
			ErrOK,
			[][]byte{{2}, {3}, {1}},
		},
		{
			"roll 0",
			[][]byte{{1}, {2}, {3}},
			func(s *stack) error { return s.RollN(0) },
			ErrOK,
			[][]byte{{1}, {2}, {3}},
		},
		{
			"push int",
			nil,
			func(s *stack) error {
				s.PushInt(scriptNum(-128))
				s.PushBool(true)
				return nil
			},
			ErrOK,
			[][]byte{{0x80, 0x80}, {0x01}},
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			s := stack{stk: copyStack(test.before)}
			err := test.operation(&s)
			if test.code != ErrOK {
				assert.Equal(t, test.code, ErrorCodeOf(err), "%v", err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, normalizeStack(test.after), normalizeStack(s.stk))
		})
	}
}

// 测试推入元素长度记录
func TestStackPushWatermark(t *testing.T) {
	var s stack
	assert.Equal(t, 0, s.pushWatermark())

	s.PushByteArray(make([]byte, 10))
	s.PushByteArray(make([]byte, 3))
	assert.Equal(t, 10, s.pushWatermark())

	s.resetPushWatermark()
	assert.Equal(t, 0, s.pushWatermark())

	// 复制已有元素也算作推入
	require.NoError(t, s.DupN(1))
	assert.Equal(t, 3, s.pushWatermark())
}
