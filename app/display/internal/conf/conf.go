package conf

type Bootstrap struct {
	Server *Server
	Data   *Data
}

type Server struct {
	Http *HTTP
}

type HTTP struct {
	Addr    string
	Timeout string
}

// Data 记录来源：配置了 Database.Host 时读 Postgres，否则读流水线输出的 JSON 文件
type Data struct {
	Database    *Database `json:"database"`
	RecordsFile string    `json:"records_file"`
}

type Database struct {
	Host     string `json:"host"`
	Port     int32  `json:"port"`
	User     string `json:"user"`
	Password string `json:"password"`
	Name     string `json:"name"`
}
