package modbuscomm

import (
	"math"
	"math/rand"
	"testing"

	"github.com/google/uuid"
	"gotest.tools/v3/assert"
)

func TestEncodeU16Big(t *testing.T) {
	testReg := Register{"test", 0, u16, 3, ro, bigEndian}
	var testVal float64 = 1234
	bytes := encode(testVal, testReg)

	assertBytes := []byte{4, 210}
	assert.DeepEqual(t, bytes, assertBytes)
}

func TestEncodeI32Little(t *testing.T) {
	testReg := Register{"test", 0, i32, 3, ro, littleEndian}
	var testVal float64 = -1234
	bytes := encode(testVal, testReg)

	assertBytes := []byte{46, 251, 255, 255}
	assert.DeepEqual(t, bytes, assertBytes)
}

func TestEncodeF32Big(t *testing.T) {
	testReg := Register{"test", 0, f32, 3, ro, bigEndian}
	var testVal float64 = -1234
	bytes := encode(testVal, testReg)

	assertBytes := []byte{196, 154, 64, 0}
	assert.DeepEqual(t, bytes, assertBytes)
}

func TestDecodeRoundTrip(t *testing.T) {
	rand.Seed(10)
	cases := []struct {
		dataType DataType
		endian   Endian
		scale    float64
	}{
		{u16, bigEndian, 65535},
		{u32, littleEndian, 4294967295},
		{i16, bigEndian, -32767},
		{i32, littleEndian, -2147483647},
		{u64, bigEndian, 9223372036854775807},
	}

	for _, c := range cases {
		testReg := Register{"test", 0, c.dataType, 3, ro, c.endian}
		assertVal := rand.Float64() * c.scale
		testVal := decode(encode(assertVal, testReg), testReg)
		assert.Equal(t, testVal, math.Trunc(assertVal), "%v %v", c.dataType, c.endian)
	}
}

func TestDecodeF64Big(t *testing.T) {
	testReg := Register{"test", 0, f64, 3, ro, bigEndian}
	assertVal := rand.Float64() * -32767
	testVal := decode(encode(assertVal, testReg), testReg)

	assert.Equal(t, testVal, assertVal)
}

func TestFindRegisterByName(t *testing.T) {
	testRegs := []Register{
		{"test1", 0, u16, 3, ro, bigEndian},
		{"test2", 1, u32, 3, ro, bigEndian},
		{"test3", 3, u64, 3, ro, bigEndian},
	}

	i, err := findIndexByName(testRegs, "test2")
	assert.NilError(t, err)
	assert.Equal(t, testRegs[i].Address, uint16(1))

	i, err = findIndexByName(testRegs, "test42")
	assert.Error(t, err, "register name not found in register array")
	assert.Equal(t, i, -1)
}

func TestReadDemandConfig(t *testing.T) {
	p, err := New("./demand_config_test.json", fakeSetter{demands: map[uuid.UUID]float64{}})
	assert.NilError(t, err)

	assert.Equal(t, p.pollRate, 1000)
	assert.Equal(t, len(p.registers), 2)
	assert.Equal(t, p.registers[0].Name, "House")
	assert.Equal(t, p.registers[0].DataType, f32)
}

type fakeSetter struct {
	pid     uuid.UUID
	demands map[uuid.UUID]float64
}

func (f fakeSetter) Lookup(name string) (uuid.UUID, bool) {
	if name == "House" {
		return f.pid, true
	}
	return uuid.Nil, false
}

func (f fakeSetter) SetLoadDemand(pid uuid.UUID, desired float64) error {
	f.demands[pid] = desired
	return nil
}

func TestApplyReadings(t *testing.T) {
	pid, _ := uuid.NewUUID()
	setter := fakeSetter{pid: pid, demands: map[uuid.UUID]float64{}}
	p := &DemandPoller{system: setter}

	p.apply(map[string]float64{
		"House":   12.5,
		"Unknown": 3,
		"Bad":     -1,
	})

	assert.Equal(t, len(setter.demands), 1)
	assert.Equal(t, setter.demands[pid], 12.5)
}
