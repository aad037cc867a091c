package fixture

import (
	"bytes"
	"strings"
	"testing"

	"github.com/robmorgan/kinetic/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestFixture() *Fixture {
	return NewFixture(NewMotor(SixtyTwoChannel), NewMotor(NineChannel), NewMotor(NineChannel))
}

func TestSetMotorChannelRoutesByRole(t *testing.T) {
	t.Parallel()

	fix := newTestFixture()
	fix.SetMotorChannel(1, 62, 10)
	fix.SetMotorChannel(2, 1, 20)
	fix.SetMotorChannel(3, 9, 30)

	assert.Equal(t, 10, fix.GetMotor(1).GetChannel(62))
	assert.Equal(t, 20, fix.GetMotor(2).GetChannel(1))
	assert.Equal(t, 30, fix.GetMotor(3).GetChannel(9))
	assert.Equal(t, 0, fix.GetMotor(2).GetChannel(9))
}

func TestInvalidRoles(t *testing.T) {
	t.Parallel()

	fix := newTestFixture()
	before := fix.Values()

	fix.SetMotorChannel(0, 1, 99)
	fix.SetMotorChannel(4, 1, 99)
	fix.SetMotorChannel(-1, 1, 99)

	assert.Equal(t, before, fix.Values())
	assert.Nil(t, fix.GetMotor(0))
	assert.Nil(t, fix.GetMotor(4))
	assert.NotNil(t, fix.GetMotor(3))
}

func TestValuesOrdering(t *testing.T) {
	t.Parallel()

	fix := newTestFixture()
	require.Equal(t, 80, fix.GetChannelCount())

	fix.SetMotorChannel(1, 1, 1)
	fix.SetMotorChannel(2, 1, 2)
	fix.SetMotorChannel(3, 9, 3)

	values := fix.Values()
	require.Len(t, values, 80)
	assert.Equal(t, uint8(1), values[0])
	assert.Equal(t, uint8(2), values[62])
	assert.Equal(t, uint8(3), values[79])
}

func TestPrintStatus(t *testing.T) {
	t.Parallel()

	fix := newTestFixture()
	var buf bytes.Buffer
	fix.PrintStatus(&buf)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, "Kinetic Light Status:", lines[0])
	assert.True(t, strings.HasPrefix(lines[1], "62CH Motor - CH1: 0"))
	assert.True(t, strings.HasPrefix(lines[2], "9CH Motor - "))

	// dumping status does not change anything
	assert.Equal(t, make([]uint8, 80), fix.Values())
}

func TestNewFromConfig(t *testing.T) {
	t.Parallel()

	cfg := config.NewKineticConfig()
	fix, err := NewFromConfig(cfg)
	require.NoError(t, err)

	assert.Equal(t, cfg.Patch.Name, fix.Name)
	assert.Equal(t, 1, fix.Universe)
	assert.Equal(t, SixtyTwoChannel, fix.GetMotor(1).Type)
	assert.Equal(t, NineChannel, fix.GetMotor(2).Type)
	assert.Equal(t, NineChannel, fix.GetMotor(3).Type)
	assert.Equal(t, 80, fix.GetChannelCount())
}

func TestNewFromConfigErrors(t *testing.T) {
	t.Parallel()

	cfg := config.NewKineticConfig()
	cfg.Patch.Motors = cfg.Patch.Motors[:2]
	_, err := NewFromConfig(cfg)
	require.Error(t, err)

	cfg = config.NewKineticConfig()
	cfg.Patch.Motors[1].Profile = "missing"
	_, err = NewFromConfig(cfg)
	require.Error(t, err)
}

func TestFixtureReset(t *testing.T) {
	t.Parallel()

	fix := newTestFixture()
	fix.SetMotorChannel(1, 1, 200)
	fix.SetMotorChannel(1, 62, 5)
	fix.SetMotorChannel(3, 9, 30)

	fix.Reset()

	assert.Equal(t, make([]uint8, 80), fix.Values())
	assert.Equal(t, 62, fix.GetMotor(1).GetChannelCount())
}
