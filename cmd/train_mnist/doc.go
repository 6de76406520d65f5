// Command train_mnist trains the digit classification convnet on a CSV or IDX
// copy of MNIST.
//
//	train_mnist train --config run.yaml [--epochs 5 --dataset-path train.csv ...]
//	train_mnist devices
//
// Every configuration key can also be set through a DIGITNET_* environment
// variable, DIGITNET_DEBUG=1 enables debug logging.
package main
