package config

// PatchedFixture stores config info for the kinetic fixture
type PatchedFixture struct {
	Name     string `yaml:"name"`
	Address  int    `yaml:"address"`
	Universe int    `yaml:"universe"`

	// Motors are listed by role: the first entry drives the lighting channels
	Motors []PatchedMotor `yaml:"motors"`
}

// PatchedMotor names a motor and the profile it runs in.
type PatchedMotor struct {
	Name    string `yaml:"name"`
	Profile string `yaml:"profile"`
}

func PatchFixture() PatchedFixture {
	return PatchedFixture{
		Name:     "kinetic_light",
		Address:  1,
		Universe: 1,
		Motors: []PatchedMotor{
			// channel motor (motor A)
			{
				Name:    "motor_a",
				Profile: "kinetic-motor-62ch",
			},
			{
				Name:    "motor_b",
				Profile: "kinetic-motor-9ch",
			},
			{
				Name:    "motor_c",
				Profile: "kinetic-motor-9ch",
			},
		},
	}
}
