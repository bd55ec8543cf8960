package esp01

// AT command set of the esp-01 factory firmware, see
// espressif "ESP8266 AT Instruction Set". Commands are CRLF
// terminated, answers end with one of the terminal tokens below.

const (
	CmdPing        = "AT"
	CmdEcho        = "ATE0"
	CmdSoftReset   = "AT+RST"
	CmdVersion     = "AT+GMR"
	CmdStationMode = "AT+CWMODE=1"
	CmdJoinAP      = "AT+CWJAP" // AT+CWJAP="ssid","password"
	CmdQuitAP      = "AT+CWQAP"
	CmdOpenConn    = "AT+CIPSTART" // AT+CIPSTART="UDP","host",port
	CmdSend        = "AT+CIPSEND"  // AT+CIPSEND=<length>, then raw payload
	CmdCloseConn   = "AT+CIPCLOSE"
	CmdDeepSleep   = "AT+GSLP" // AT+GSLP=<ms>, 0 sleeps until external reset
)

// terminal tokens
const (
	TokenOK     = "OK"
	TokenError  = "ERROR"
	TokenFail   = "FAIL"
	TokenReady  = "ready"
	TokenSendOK = "SEND OK"
	TokenPrompt = ">"
)

const crlfStr = "\r\n"
