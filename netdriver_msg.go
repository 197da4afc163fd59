// Copyright (c) 2025, Oh Inseo (YJK) -- Licensed under BSD-2-Clause
package main

// msgReader turns a message based transport into the byte stream the protocol
// reads from. A message may carry any number of protocol bytes.
type msgReader struct {
	msgBuf  []uint8
	recvMsg func() ([]uint8, error)
}

func (r *msgReader) fill(n int) error {
	for len(r.msgBuf) < n {
		msg, err := r.recvMsg()
		if err != nil {
			return err
		}
		r.msgBuf = append(r.msgBuf, msg...)
	}
	return nil
}

func (r *msgReader) inB() (uint8, error) {
	if err := r.fill(1); err != nil {
		return 0, err
	}
	res := r.msgBuf[0]
	r.msgBuf = r.msgBuf[1:]
	return res, nil
}
func (r *msgReader) inW() (uint16, error) {
	if err := r.fill(2); err != nil {
		return 0, err
	}
	res := (uint16(r.msgBuf[0]) << 8) | uint16(r.msgBuf[1])
	r.msgBuf = r.msgBuf[2:]
	return res, nil
}
