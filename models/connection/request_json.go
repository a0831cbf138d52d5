package connection

type ReqSelectShip struct {
	ShipId string `json:"ship_id"`
}

type ReqCellClick struct {
	X int `json:"x"`
	Y int `json:"y"`
}

type ReqPreview struct {
	X int `json:"x"`
	Y int `json:"y"`
}
