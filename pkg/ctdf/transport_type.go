package ctdf

type VehicleKind string

const (
	VehicleKindBoat        VehicleKind = "Boat"
	VehicleKindBus         VehicleKind = "Bus"
	VehicleKindDlr         VehicleKind = "Dlr"
	VehicleKindOverGround  VehicleKind = "OverGround"
	VehicleKindUnderGround VehicleKind = "UnderGround"
)
