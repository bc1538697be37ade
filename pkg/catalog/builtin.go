package catalog

// Default returns the built-in catalog of the hydroponic controller: pump,
// lamp, water and nutrient sensors, the radio bridge and the controller.
func Default() *Catalog {
	return &Catalog{
		MaintenanceKey: "system.config.maintance",
		Summary: SummaryKeys{
			Mode:       "pump.config.mode",
			Countdown:  "pump.int.nextSwitchTime",
			PlainType:  "pump.int.plainType",
			SwingState: "pump.int.swingState",
		},
		Widgets: []Widget{
			{ID: "pump", Name: "Pump", KeyBase: "pump", Kind: KindBoolean},
			{ID: "lamp", Name: "Lamp", KeyBase: "lamp", Kind: KindBoolean},
			{ID: "water", Name: "Water", KeyBase: "waterLevel", Kind: KindNumeric, Unit: "%"},
			{ID: "level", Name: "Level", KeyBase: "upperLevel", Kind: KindBoolean, Unit: "%"},
			{ID: "ppm", Name: "PPM", KeyBase: "ppmMeter", Kind: KindNumeric, Unit: "ppm"},
			{ID: "ph", Name: "PH", KeyBase: "phMeter", Kind: KindNumeric, Unit: "pH"},
			{ID: "purity", Name: "Purity", KeyBase: "turbidimeter", Kind: KindNumeric, Unit: "%"},
			{ID: "temp", Name: "Temp", KeyBase: "temperature", Kind: KindNumeric, Unit: "°C"},
			{ID: "bridge", Name: "Bridge", KeyBase: "bridge", Kind: KindBoolean},
			{ID: "controller", Name: "Controller", KeyBase: "multiController", Kind: KindBoolean},
			{ID: "system", Name: "System", KeyBase: "system", Kind: KindBoolean},
			{ID: "reserve", Name: "Reserve", KeyBase: "reserve", Kind: KindNumeric},
		},
		Devices: []Device{
			{
				ID:   "pump",
				Name: "Pump",
				Entries: []Entry{
					{Key: "pump.config.enabled", Label: "Enabled", Section: SectionConfig, Type: TypeBool},
					{Key: "pump.config.mode", Label: "Mode", Section: SectionConfig, Type: TypeSelect, Options: []Option{
						{Value: 0, Label: "FLOW"},
						{Value: 1, Label: "SWING"},
						{Value: 2, Label: "DRIP"},
					}},
					{Key: "pump.config.onTime", Label: "On time", Section: SectionConfig, Type: TypeNumber, Unit: "s"},
					{Key: "pump.config.offTime", Label: "Pause", Section: SectionConfig, Type: TypeNumber, Unit: "s"},
					{Key: "pump.config.swingTime", Label: "Swing time", Section: SectionConfig, Type: TypeNumber, Unit: "s"},
					{Key: "pump.config.validTime", Label: "Validity", Section: SectionConfig, Type: TypeNumber, Unit: "s"},
					{Key: "pump.config.maxFloodTime", Label: "Max flood time", Section: SectionConfig, Type: TypeNumber, Unit: "s"},
					{Key: "pump.int.plainType", Label: "Irrigation phase", Section: SectionInternal, Type: TypeSelect, Options: []Option{
						{Value: 0, Label: "Draining"},
						{Value: 1, Label: "Flooding"},
					}},
					{Key: "pump.int.nextSwitchTime", Label: "Until switch", Section: SectionInternal, Type: TypeNumber, Unit: "s"},
					{Key: "pump.int.desiredState", Label: "Desired state", Section: SectionInternal, Type: TypeBool},
					{Key: "pump.int.swingState", Label: "Swing phase", Section: SectionInternal, Type: TypeSelect, Options: []Option{
						{Value: 0, Label: "Refill"},
						{Value: 1, Label: "Drain"},
					}},
				},
			},
			{
				ID:   "lamp",
				Name: "Lamp",
				Entries: []Entry{
					{Key: "lamp.config.enabled", Label: "Enabled", Section: SectionConfig, Type: TypeBool},
					{Key: "lamp.config.onTime", Label: "Switch on", Section: SectionConfig, Type: TypeTime},
					{Key: "lamp.config.offTime", Label: "Switch off", Section: SectionConfig, Type: TypeTime},
				},
			},
			{
				ID:   "waterLevel",
				Name: "Water sensor",
				Entries: []Entry{
					{Key: "waterLevel.config.minValue", Label: "Minimum", Section: SectionConfig, Type: TypeNumber, Unit: "%"},
				},
			},
			{ID: "ppmMeter", Name: "PPM"},
			{ID: "phMeter", Name: "PH"},
			{ID: "turbidimeter", Name: "Purity"},
			{ID: "temperature", Name: "Temperature"},
			{ID: "upperLevel", Name: "Level"},
			{
				ID:   "bridge",
				Name: "Bridge",
				Entries: []Entry{
					{Key: "bridge.config.mac", Label: "MAC addresses", Section: SectionConfig, Type: TypeList},
				},
			},
			{
				ID:   "system",
				Name: "System",
				Entries: []Entry{
					{Key: "system.config.maintance", Label: "Maintenance mode", Section: SectionConfig, Type: TypeBool},
				},
			},
			{ID: "multiController", Name: "Controller"},
		},
	}
}
